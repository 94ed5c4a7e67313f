package services

import (
	"context"

	"github.com/expofinder/directory-backend/internal/domain/entities"
)

const defaultCommitSampleSize = 3

// ListingCreator is the store contract the committer writes through.
type ListingCreator interface {
	Create(ctx context.Context, listing *entities.BusinessListing) error
}

// CommitOutcome is the per-record accounting of one commit pass.
type CommitOutcome struct {
	Committed       int
	Failed          int
	Errors          []string
	SampleCommitted []string
}

// BatchCommitter persists surviving records one at a time. One record's
// failure never aborts the batch: it is counted, its error recorded, and the
// pass continues with the next record.
type BatchCommitter struct {
	creator    ListingCreator
	sampleSize int
}

// NewBatchCommitter creates a committer writing through the given store.
func NewBatchCommitter(creator ListingCreator) *BatchCommitter {
	return &BatchCommitter{
		creator:    creator,
		sampleSize: defaultCommitSampleSize,
	}
}

// Commit writes the records sequentially and returns the aggregate outcome.
func (c *BatchCommitter) Commit(ctx context.Context, records []*entities.BusinessListing) CommitOutcome {
	outcome := CommitOutcome{
		Errors:          []string{},
		SampleCommitted: []string{},
	}

	for _, record := range records {
		// Stop on cancellation instead of failing every remaining record
		// against a dead context.
		if ctx.Err() != nil {
			break
		}
		if err := c.creator.Create(ctx, record); err != nil {
			outcome.Failed++
			outcome.Errors = append(outcome.Errors, record.Name+": "+err.Error())
			continue
		}
		outcome.Committed++
		if len(outcome.SampleCommitted) < c.sampleSize {
			outcome.SampleCommitted = append(outcome.SampleCommitted, record.Name)
		}
	}

	return outcome
}
