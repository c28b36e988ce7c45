package explorer

import (
	"regexp"
	"sort"
	"strconv"
)

// disambiguator matches a trailing " (n)" placed right before the extension
// or at the end of the name.
var disambiguator = regexp.MustCompile(`^(.*) \(\d+\)(\.[^.\s]*)?$`)

// BaseName strips one trailing " (n)" copy marker from a file name.
//
//	BaseName("report (1).pdf")    == "report.pdf"
//	BaseName("a (1) (2).txt")     == "a (1).txt"
//	BaseName("notes (draft).txt") == "notes (draft).txt"
func BaseName(name string) string {
	m := disambiguator.FindStringSubmatch(name)
	if m == nil {
		return name
	}
	return m[1] + m[2]
}

// Duplicate describes a file's position inside its duplicate group.
type Duplicate struct {
	Index  int      // 1-based, in upload order
	Total  int      // group size, always >= 2
	Others []string // ids of the other members, in upload order
}

// Duplicates maps a file id to its group position. Files without siblings
// are absent.
type Duplicates map[string]Duplicate

// DetectDuplicates groups the files of a listing by BaseName. Folders are
// ignored and groups of one are dropped.
func DetectDuplicates(entries []Entry) Duplicates {
	groups := make(map[string][]Entry)
	var order []string
	for _, e := range entries {
		if e.Folder {
			continue
		}
		key := BaseName(e.Name)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], e)
	}

	out := make(Duplicates)
	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].sortTime().Before(members[j].sortTime())
		})
		for i, m := range members {
			others := make([]string, 0, len(members)-1)
			for j, o := range members {
				if j != i {
					others = append(others, o.ID)
				}
			}
			out[m.ID] = Duplicate{Index: i + 1, Total: len(members), Others: others}
		}
	}
	return out
}

// Group returns the ids of every member of id's group, or nil.
func (d Duplicates) Group(id string) []string {
	dup, ok := d[id]
	if !ok {
		return nil
	}
	ids := make([]string, 0, dup.Total)
	ids = append(ids, id)
	return append(ids, dup.Others...)
}

// Related reports whether id belongs to the same group as active.
func (d Duplicates) Related(active, id string) bool {
	if active == "" {
		return false
	}
	if active == id {
		_, ok := d[id]
		return ok
	}
	for _, o := range d[active].Others {
		if o == id {
			return true
		}
	}
	return false
}

// Tag is the list label shown next to a duplicated file.
func (d Duplicates) Tag(id string) string {
	dup, ok := d[id]
	if !ok || len(dup.Others) == 0 {
		return ""
	}
	return "Duplicate (" + strconv.Itoa(dup.Index) + ")"
}
