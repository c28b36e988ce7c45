package explorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day int) *time.Time {
	t := time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestMergeDirectory(t *testing.T) {
	active := []Person{
		{ID: "1", Email: "ana@example.com", CreatedAt: at(1)},
		{ID: "2", Email: "bo@example.com", CreatedAt: at(3)},
		{ID: "9", Email: "cy@example.com", CreatedAt: at(2)},
	}
	deleted := []Person{
		{ID: "2", Email: "bo@example.com", FullName: "Bo", CreatedAt: at(3), DeletedAt: at(10)},
		{ID: "7", Email: "cy@example.com", CreatedAt: at(2), DeletedAt: at(5)},
	}

	got := MergeDirectory(active, deleted)

	require.Len(t, got, 3)
	assert.Equal(t, "2", got[0].ID)
	assert.True(t, got[0].Deleted)
	assert.Equal(t, "Bo", got[0].FullName)
	assert.Equal(t, "7", got[1].ID)
	assert.True(t, got[1].Deleted)
	assert.Equal(t, "1", got[2].ID)
	assert.False(t, got[2].Deleted)
}

func TestFilterDirectory(t *testing.T) {
	people := []Person{
		{ID: "1", Email: "ana.lopez@example.com", Department: "Protection"},
		{ID: "2", Email: "bo@example.com", FullName: "Bo Chen", GridAddress: "North-7"},
	}

	assert.Len(t, FilterDirectory(people, ""), 2)
	assert.Equal(t, "1", FilterDirectory(people, "ana.lopez")[0].ID)
	assert.Equal(t, "1", FilterDirectory(people, "protect")[0].ID)
	assert.Equal(t, "2", FilterDirectory(people, "north")[0].ID)
	assert.Empty(t, FilterDirectory(people, "example.org"))

	assert.Equal(t, "Bo Chen", people[1].Label())
	assert.Equal(t, "ana.lopez", people[0].Label())
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "0 B", HumanSize(0))
	assert.Equal(t, "1.5 kB", HumanSize(1500))
	assert.Equal(t, "-", ShortDate(time.Time{}))
}
