package services

import (
	"strings"

	"github.com/expofinder/directory-backend/internal/domain/entities"
)

// Deduplicator removes duplicate listings in two stages: within the batch
// just fetched, then against a snapshot of the persisted store. Both stages
// key on the external id when present and on the case-insensitive
// name+city+country tuple; a record colliding on either key is dropped.
type Deduplicator struct{}

// NewDeduplicator creates a deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Dedup returns the surviving records in their original relative order. The
// operation is idempotent: running it on its own output changes nothing.
func (d *Deduplicator) Dedup(batch, existing []*entities.BusinessListing) []*entities.BusinessListing {
	return d.filterAgainstStore(d.dedupBatch(batch), existing)
}

// dedupBatch drops records whose key already appeared earlier in the batch,
// keeping the first occurrence. Arrival order is deterministic because the
// planner's iteration order is.
func (d *Deduplicator) dedupBatch(batch []*entities.BusinessListing) []*entities.BusinessListing {
	seenExternal := make(map[string]struct{}, len(batch))
	seenTuples := make(map[string]struct{}, len(batch))

	survivors := make([]*entities.BusinessListing, 0, len(batch))
	for _, record := range batch {
		if record == nil {
			continue
		}
		if d.collides(record, seenExternal, seenTuples) {
			continue
		}
		if record.ExternalID != "" {
			seenExternal[record.ExternalID] = struct{}{}
		}
		seenTuples[tupleKey(record)] = struct{}{}
		survivors = append(survivors, record)
	}
	return survivors
}

// filterAgainstStore drops records already present in the store snapshot.
// The snapshot is read once per run by the caller, not once per record.
func (d *Deduplicator) filterAgainstStore(batch, existing []*entities.BusinessListing) []*entities.BusinessListing {
	storeExternal := make(map[string]struct{}, len(existing))
	storeTuples := make(map[string]struct{}, len(existing))
	for _, record := range existing {
		if record == nil {
			continue
		}
		if record.ExternalID != "" {
			storeExternal[record.ExternalID] = struct{}{}
		}
		storeTuples[tupleKey(record)] = struct{}{}
	}

	survivors := make([]*entities.BusinessListing, 0, len(batch))
	for _, record := range batch {
		if d.collides(record, storeExternal, storeTuples) {
			continue
		}
		survivors = append(survivors, record)
	}
	return survivors
}

func (d *Deduplicator) collides(record *entities.BusinessListing, external, tuples map[string]struct{}) bool {
	if record.ExternalID != "" {
		if _, ok := external[record.ExternalID]; ok {
			return true
		}
	}
	_, ok := tuples[tupleKey(record)]
	return ok
}

func tupleKey(record *entities.BusinessListing) string {
	return strings.ToLower(record.Name) + "|" +
		strings.ToLower(record.Address.City) + "|" +
		strings.ToLower(record.Address.Country)
}
