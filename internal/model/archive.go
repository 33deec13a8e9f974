package model

import "time"

// RoundRecord is one archived round row, flattened for persistence.
type RoundRecord struct {
	RoundID      uint64    `json:"round_id"`
	State        string    `json:"state"`
	OpenedAt     time.Time `json:"opened_at"`
	Deadline     time.Time `json:"deadline"`
	ClosedAt     time.Time `json:"closed_at"`
	TotalTickets uint64    `json:"total_tickets"`
	TotalWeight  uint64    `json:"total_weight"`
	TotalWagered string    `json:"total_wagered"`
	Randomness   string    `json:"randomness,omitempty"`
	FeesSettled  bool      `json:"fees_settled"`
}

// ClaimRecord is one archived prize claim.
type ClaimRecord struct {
	RoundID  uint64 `json:"round_id"`
	Slot     uint32 `json:"slot"`
	Tier     string `json:"tier"`
	Claimant string `json:"claimant"`
}

// RefundRecord is one address's withdrawable refund credit.
type RefundRecord struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

// RoundExport bundles everything the archive persists for one round: the
// round row, the frozen entrant list, the published commit records, the
// claims taken so far and the outstanding refund credits of the round's
// participants.
type RoundExport struct {
	Round    RoundRecord     `json:"round"`
	Entrants []EntrantRecord `json:"entrants"`
	Commits  []CommitRecord  `json:"commits"`
	Claims   []ClaimRecord   `json:"claims"`
	Refunds  []RefundRecord  `json:"refunds"`
}
