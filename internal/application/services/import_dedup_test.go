package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expofinder/directory-backend/internal/domain/entities"
)

func makeListing(externalID, name, city, country string) *entities.BusinessListing {
	return &entities.BusinessListing{
		ExternalID: externalID,
		Name:       name,
		Address: entities.Address{
			City:    city,
			Country: country,
		},
	}
}

func TestDeduplicator_DropsDuplicateExternalID(t *testing.T) {
	d := NewDeduplicator()

	batch := []*entities.BusinessListing{
		makeListing("ext-1", "Acme Stands", "Berlin", "Germany"),
		makeListing("ext-1", "Acme Stands Berlin", "Berlin", "Germany"),
	}

	survivors := d.Dedup(batch, nil)

	require.Len(t, survivors, 1)
	assert.Equal(t, "Acme Stands", survivors[0].Name)
}

func TestDeduplicator_DropsDuplicateTupleCaseInsensitive(t *testing.T) {
	d := NewDeduplicator()

	batch := []*entities.BusinessListing{
		makeListing("ext-1", "Acme Stands", "Berlin", "Germany"),
		makeListing("ext-2", "ACME STANDS", "berlin", "GERMANY"),
	}

	survivors := d.Dedup(batch, nil)

	require.Len(t, survivors, 1)
	assert.Equal(t, "ext-1", survivors[0].ExternalID)
}

func TestDeduplicator_FirstSeenWins(t *testing.T) {
	d := NewDeduplicator()

	batch := []*entities.BusinessListing{
		makeListing("ext-1", "First", "Berlin", "Germany"),
		makeListing("ext-2", "Second", "Berlin", "Germany"),
		makeListing("ext-1", "Third", "Munich", "Germany"),
		makeListing("ext-3", "second", "Berlin", "Germany"),
	}

	survivors := d.Dedup(batch, nil)

	require.Len(t, survivors, 2)
	assert.Equal(t, "First", survivors[0].Name)
	assert.Equal(t, "Second", survivors[1].Name)
}

func TestDeduplicator_MissingExternalIDNeverCollidesOnIt(t *testing.T) {
	d := NewDeduplicator()

	batch := []*entities.BusinessListing{
		makeListing("", "Alpha Events", "Berlin", "Germany"),
		makeListing("", "Beta Events", "Berlin", "Germany"),
	}

	survivors := d.Dedup(batch, nil)
	assert.Len(t, survivors, 2)
}

func TestDeduplicator_FiltersAgainstStore(t *testing.T) {
	d := NewDeduplicator()

	batch := []*entities.BusinessListing{
		makeListing("ext-1", "Known Builder", "Berlin", "Germany"),
		makeListing("ext-2", "Fresh Builder", "Berlin", "Germany"),
		makeListing("ext-3", "Stored By Name", "Munich", "Germany"),
	}
	existing := []*entities.BusinessListing{
		makeListing("ext-1", "Known Builder Under Other Name", "Hamburg", "Germany"),
		makeListing("ext-9", "stored by name", "Munich", "Germany"),
	}

	survivors := d.Dedup(batch, existing)

	require.Len(t, survivors, 1)
	assert.Equal(t, "Fresh Builder", survivors[0].Name)
}

func TestDeduplicator_Idempotent(t *testing.T) {
	d := NewDeduplicator()

	batch := []*entities.BusinessListing{
		makeListing("ext-1", "Acme Stands", "Berlin", "Germany"),
		makeListing("ext-1", "Acme Stands", "Berlin", "Germany"),
		makeListing("ext-2", "Beta Stands", "Munich", "Germany"),
	}

	once := d.Dedup(batch, nil)
	twice := d.Dedup(once, nil)

	assert.Equal(t, once, twice)
}

func TestDeduplicator_EmptyInputs(t *testing.T) {
	d := NewDeduplicator()

	assert.Empty(t, d.Dedup(nil, nil))
	assert.Empty(t, d.Dedup(nil, []*entities.BusinessListing{makeListing("x", "A", "B", "C")}))
}
