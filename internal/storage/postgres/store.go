package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"raffleScope/internal/model"
)

// Store provides Postgres persistence for the raffle archive: rounds,
// published snapshots and commit records, durable across operator restarts.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertRound inserts or updates one round's persisted state.
func (s *Store) UpsertRound(ctx context.Context, r model.RoundRecord) error {
	var randomness *string
	if r.Randomness != "" {
		v := r.Randomness
		randomness = &v
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO rounds (
			round_id, state, opened_at, deadline, closed_at,
			total_tickets, total_weight, total_wagered, randomness, fees_settled,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now())
		ON CONFLICT (round_id)
		DO UPDATE SET
			state = EXCLUDED.state,
			opened_at = EXCLUDED.opened_at,
			deadline = EXCLUDED.deadline,
			closed_at = EXCLUDED.closed_at,
			total_tickets = EXCLUDED.total_tickets,
			total_weight = EXCLUDED.total_weight,
			total_wagered = EXCLUDED.total_wagered,
			randomness = EXCLUDED.randomness,
			fees_settled = EXCLUDED.fees_settled,
			updated_at = now()
	`,
		int64(r.RoundID),
		r.State,
		r.OpenedAt,
		r.Deadline,
		r.ClosedAt,
		int64(r.TotalTickets),
		int64(r.TotalWeight),
		r.TotalWagered,
		randomness,
		r.FeesSettled,
	)
	return err
}

// UpsertEntrants inserts or updates published entrant rows.
func (s *Store) UpsertEntrants(ctx context.Context, rows []model.EntrantRecord) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO entrants (round_id, address, tickets, weight, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
			ON CONFLICT (round_id, address)
			DO UPDATE SET
				tickets = EXCLUDED.tickets,
				weight = EXCLUDED.weight,
				updated_at = now()
		`,
			int64(row.RoundID),
			row.Address,
			int64(row.Tickets),
			int64(row.Weight),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rows {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertWinners inserts or updates published winner rows.
func (s *Store) UpsertWinners(ctx context.Context, rows []model.WinnerRecord) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO winners (round_id, slot, tier, address, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
			ON CONFLICT (round_id, slot)
			DO UPDATE SET
				tier = EXCLUDED.tier,
				address = EXCLUDED.address,
				updated_at = now()
		`,
			int64(row.RoundID),
			int64(row.Slot),
			row.Tier,
			row.Address,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rows {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertCommitRecord inserts a commit record. Roots are write-once: a
// conflicting re-insert with the same (round, kind) is a no-op.
func (s *Store) UpsertCommitRecord(ctx context.Context, rec model.CommitRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO commit_records (round_id, kind, root, pointer, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (round_id, kind) DO NOTHING
	`,
		int64(rec.RoundID),
		string(rec.Kind),
		rec.Root.Hex(),
		rec.Pointer,
	)
	return err
}

// UpsertClaims inserts or updates archived claim rows.
func (s *Store) UpsertClaims(ctx context.Context, rows []model.ClaimRecord) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO claims (round_id, slot, tier, claimant, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
			ON CONFLICT (round_id, slot)
			DO UPDATE SET
				tier = EXCLUDED.tier,
				claimant = EXCLUDED.claimant,
				updated_at = now()
		`,
			int64(row.RoundID),
			int64(row.Slot),
			row.Tier,
			row.Claimant,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rows {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertRefunds inserts or updates outstanding refund credits.
func (s *Store) UpsertRefunds(ctx context.Context, rows []model.RefundRecord) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO refunds (address, amount, created_at, updated_at)
			VALUES ($1, $2, now(), now())
			ON CONFLICT (address)
			DO UPDATE SET
				amount = EXCLUDED.amount,
				updated_at = now()
		`,
			row.Address,
			row.Amount,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rows {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// ArchiveRound persists one round export in full: the round row, entrants,
// commit records, claims and refund credits.
func (s *Store) ArchiveRound(ctx context.Context, export model.RoundExport) error {
	if err := s.UpsertRound(ctx, export.Round); err != nil {
		return fmt.Errorf("upsert round: %w", err)
	}
	if err := s.UpsertEntrants(ctx, export.Entrants); err != nil {
		return fmt.Errorf("upsert entrants: %w", err)
	}
	for _, rec := range export.Commits {
		if err := s.UpsertCommitRecord(ctx, rec); err != nil {
			return fmt.Errorf("upsert commit record: %w", err)
		}
	}
	if err := s.UpsertClaims(ctx, export.Claims); err != nil {
		return fmt.Errorf("upsert claims: %w", err)
	}
	if err := s.UpsertRefunds(ctx, export.Refunds); err != nil {
		return fmt.Errorf("upsert refunds: %w", err)
	}
	return nil
}

// LoadState returns the last archived round id for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var round uint64
	row := s.pool.QueryRow(ctx, `SELECT last_archived_round FROM archive_state WHERE name=$1`, name)
	if err := row.Scan(&round); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return round, true, nil
}

// SaveState upserts the last archived round id for a name.
func (s *Store) SaveState(ctx context.Context, name string, round uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO archive_state (name, last_archived_round, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_archived_round = EXCLUDED.last_archived_round, updated_at = now()
	`, name, round)
	return err
}
