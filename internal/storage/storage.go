package storage

import "raffleScope/internal/model"

// CommitLog is the public sink for commit records.
type CommitLog interface {
	PutCommitRecord(rec model.CommitRecord) error
}
