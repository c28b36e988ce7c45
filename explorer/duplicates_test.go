package explorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "report.pdf", want: "report.pdf"},
		{name: "copy before extension", in: "report (1).pdf", want: "report.pdf"},
		{name: "copy without extension", in: "report (12)", want: "report"},
		{name: "only the last marker", in: "a (1) (2).txt", want: "a (1).txt"},
		{name: "non numeric parens", in: "notes (draft).txt", want: "notes (draft).txt"},
		{name: "year reads as a copy marker", in: "Budget (2024).xlsx", want: "Budget.xlsx"},
		{name: "no space before marker", in: "report(1).pdf", want: "report(1).pdf"},
		{name: "marker not at the end", in: "report (1) final.pdf", want: "report (1) final.pdf"},
		{name: "dotted base", in: "v1.2 (3)", want: "v1.2"},
		{name: "keep both timestamp", in: "scan (1718000000).png", want: "scan.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseName(tt.in))
		})
	}
}

func file(id, name string, at time.Time) Entry {
	return Entry{ID: id, Name: name, Timestamp: at}
}

func TestDetectDuplicates_OrdinalsFollowUploadOrder(t *testing.T) {
	base := time.Date(2024, 12, 16, 9, 0, 0, 0, time.UTC)
	entries := []Entry{
		file("c", "report (2).pdf", base.Add(2*time.Minute)),
		file("a", "report.pdf", base),
		file("b", "report (1).pdf", base.Add(time.Minute)),
	}

	dups := DetectDuplicates(entries)

	require.Len(t, dups, 3)
	assert.Equal(t, Duplicate{Index: 1, Total: 3, Others: []string{"b", "c"}}, dups["a"])
	assert.Equal(t, Duplicate{Index: 2, Total: 3, Others: []string{"a", "c"}}, dups["b"])
	assert.Equal(t, Duplicate{Index: 3, Total: 3, Others: []string{"a", "b"}}, dups["c"])
}

func TestDetectDuplicates_IgnoresFoldersAndSingletons(t *testing.T) {
	now := time.Now()
	entries := []Entry{
		{ID: "f1", Name: "report.pdf", Folder: true, Timestamp: now},
		file("a", "report.pdf", now),
		file("b", "notes.txt", now),
		file("c", "notes (1).md", now),
	}

	dups := DetectDuplicates(entries)

	assert.Empty(t, dups)
}

func TestDetectDuplicates_MissingTimestampSortsFirst(t *testing.T) {
	entries := []Entry{
		file("late", "x (1).txt", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
		file("unknown", "x.txt", time.Time{}),
	}

	dups := DetectDuplicates(entries)

	assert.Equal(t, 1, dups["unknown"].Index)
	assert.Equal(t, 2, dups["late"].Index)
}

func TestDetectDuplicates_TiesKeepListingOrder(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	entries := []Entry{file("first", "a.txt", at), file("second", "a (1).txt", at)}

	dups := DetectDuplicates(entries)

	assert.Equal(t, 1, dups["first"].Index)
	assert.Equal(t, 2, dups["second"].Index)
}

func TestDetectDuplicates_Idempotent(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		file("1", "a.txt", base),
		file("2", "a (1).txt", base.Add(time.Hour)),
		file("3", "b.txt", base),
		file("4", "b (3).txt", base.Add(-time.Hour)),
		file("5", "b (4).txt", base.Add(time.Hour)),
	}

	first := DetectDuplicates(entries)
	second := DetectDuplicates(entries)

	assert.Equal(t, first, second)
	for id, d := range first {
		assert.NotContains(t, d.Others, id)
		assert.Len(t, d.Others, d.Total-1)
	}
}

func TestDuplicates_RelatedAndTag(t *testing.T) {
	base := time.Now()
	dups := DetectDuplicates([]Entry{
		file("a", "r.pdf", base),
		file("b", "r (1).pdf", base.Add(time.Second)),
		file("z", "other.pdf", base),
	})

	assert.True(t, dups.Related("a", "a"))
	assert.True(t, dups.Related("a", "b"))
	assert.False(t, dups.Related("a", "z"))
	assert.False(t, dups.Related("", "a"))
	assert.False(t, dups.Related("z", "z"))

	assert.Equal(t, "Duplicate (2)", dups.Tag("b"))
	assert.Equal(t, "", dups.Tag("z"))
	assert.ElementsMatch(t, []string{"a", "b"}, dups.Group("b"))
	assert.Nil(t, dups.Group("z"))
}
