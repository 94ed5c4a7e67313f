package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expofinder/directory-backend/internal/domain/entities"
)

// flakyCreator fails for names listed in failWith and records the order of
// attempts.
type flakyCreator struct {
	failWith map[string]error
	created  []string
	attempts []string
}

func (c *flakyCreator) Create(_ context.Context, listing *entities.BusinessListing) error {
	c.attempts = append(c.attempts, listing.Name)
	if err, ok := c.failWith[listing.Name]; ok {
		return err
	}
	c.created = append(c.created, listing.Name)
	return nil
}

func namedListings(names ...string) []*entities.BusinessListing {
	listings := make([]*entities.BusinessListing, 0, len(names))
	for _, name := range names {
		listings = append(listings, &entities.BusinessListing{Name: name})
	}
	return listings
}

func TestBatchCommitter_AllSucceed(t *testing.T) {
	creator := &flakyCreator{}
	committer := NewBatchCommitter(creator)

	outcome := committer.Commit(context.Background(), namedListings("A", "B", "C", "D"))

	assert.Equal(t, 4, outcome.Committed)
	assert.Equal(t, 0, outcome.Failed)
	assert.Empty(t, outcome.Errors)
	assert.Equal(t, []string{"A", "B", "C"}, outcome.SampleCommitted)
}

func TestBatchCommitter_OneFailureDoesNotAbortBatch(t *testing.T) {
	creator := &flakyCreator{
		failWith: map[string]error{"B": errors.New("connection reset")},
	}
	committer := NewBatchCommitter(creator)

	outcome := committer.Commit(context.Background(), namedListings("A", "B", "C"))

	assert.Equal(t, 2, outcome.Committed)
	assert.Equal(t, 1, outcome.Failed)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "B: connection reset", outcome.Errors[0])
	assert.Equal(t, []string{"A", "B", "C"}, creator.attempts)
}

func TestBatchCommitter_SampleExcludesFailures(t *testing.T) {
	creator := &flakyCreator{
		failWith: map[string]error{"A": errors.New("boom")},
	}
	committer := NewBatchCommitter(creator)

	outcome := committer.Commit(context.Background(), namedListings("A", "B", "C", "D", "E"))

	assert.Equal(t, []string{"B", "C", "D"}, outcome.SampleCommitted)
}

func TestBatchCommitter_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	creator := &cancellingCreator{cancelAfter: "A", cancel: cancel}
	committer := NewBatchCommitter(creator)

	outcome := committer.Commit(ctx, namedListings("A", "B", "C"))

	assert.Equal(t, 1, outcome.Committed)
	assert.Equal(t, 0, outcome.Failed)
	assert.Empty(t, outcome.Errors)
	assert.Equal(t, []string{"A"}, creator.attempts)
}

// cancellingCreator cancels the run after committing the named record.
type cancellingCreator struct {
	cancelAfter string
	cancel      context.CancelFunc
	attempts    []string
}

func (c *cancellingCreator) Create(_ context.Context, listing *entities.BusinessListing) error {
	c.attempts = append(c.attempts, listing.Name)
	if listing.Name == c.cancelAfter {
		c.cancel()
	}
	return nil
}

func TestBatchCommitter_EmptyBatch(t *testing.T) {
	creator := &flakyCreator{}
	committer := NewBatchCommitter(creator)

	outcome := committer.Commit(context.Background(), nil)

	assert.Equal(t, 0, outcome.Committed)
	assert.Equal(t, 0, outcome.Failed)
	assert.NotNil(t, outcome.Errors)
	assert.NotNil(t, outcome.SampleCommitted)
}
