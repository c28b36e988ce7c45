package explorer

import (
	"sort"
	"strings"
	"time"
)

// Scope selects where a query runs.
type Scope string

const (
	ScopeCurrent Scope = "Current"
	ScopeAll     Scope = "All"
)

// EffectiveScope applies the rule that a global search is only available
// from the root folder.
func EffectiveScope(s Scope, atRoot bool) Scope {
	if s == ScopeAll && atRoot {
		return ScopeAll
	}
	return ScopeCurrent
}

// Toggle flips the scope, staying on Current below the root.
func (s Scope) Toggle(atRoot bool) Scope {
	if s == ScopeAll || !atRoot {
		return ScopeCurrent
	}
	return ScopeAll
}

// SortOrder orders entries by date.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) Toggle() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// dateLayouts are the renderings of an entry's timestamp a query can hit.
var dateLayouts = []string{
	"1/2/2006",        // locale date
	"3:04:05 PM",      // locale time
	"Jan 2",           // short month and day
	"January 2, 2006", // long date
	"2006-01-02",
}

// Matches reports whether e matches query. The match is a case-insensitive
// substring test against the name, the owner email and the date renderings
// of the timestamp in loc. A blank query matches everything.
func Matches(e Entry, query string, loc *time.Location) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(e.Name), q) || strings.Contains(strings.ToLower(e.Email), q) {
		return true
	}
	if e.Timestamp.IsZero() {
		return false
	}
	if loc == nil {
		loc = time.Local
	}
	t := e.Timestamp.In(loc)
	for _, layout := range dateLayouts {
		if strings.Contains(strings.ToLower(t.Format(layout)), q) {
			return true
		}
	}
	return false
}

// ComposeOptions drive Compose.
type ComposeOptions struct {
	Query    string
	Order    SortOrder
	Location *time.Location
}

// Compose filters entries by the query and orders them for display: every
// folder before every file, each kind sorted by date.
func Compose(entries []Entry, opts ComposeOptions) []Entry {
	var folders, files []Entry
	for _, e := range entries {
		if !Matches(e, opts.Query, opts.Location) {
			continue
		}
		if e.Folder {
			folders = append(folders, e)
		} else {
			files = append(files, e)
		}
	}
	sortByDate(folders, opts.Order)
	sortByDate(files, opts.Order)
	return append(folders, files...)
}

func sortByDate(entries []Entry, order SortOrder) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].sortTime(), entries[j].sortTime()
		if order == SortAsc {
			return a.Before(b)
		}
		return a.After(b)
	})
}
