package explorer

import (
	"sort"
	"strings"
	"time"
)

// Person is a user directory record, active or deleted.
type Person struct {
	ID          string
	Email       string
	FullName    string
	Phone       string
	Address     string
	GridAddress string
	Department  string
	BPS         string
	Role        string
	CreatedAt   *time.Time
	DeletedAt   *time.Time
	Deleted     bool
}

// Label is the name shown for a person in lists.
func (p Person) Label() string {
	if n := strings.TrimSpace(p.FullName); n != "" {
		return n
	}
	if p.Email != "" {
		local, _, _ := strings.Cut(p.Email, "@")
		return local
	}
	return "User"
}

func (p Person) sortTime() time.Time {
	switch {
	case p.DeletedAt != nil:
		return *p.DeletedAt
	case p.CreatedAt != nil:
		return *p.CreatedAt
	}
	return epoch
}

// MergeDirectory combines the active and deleted user lists. A deleted record
// shadows an active one with the same email or id. The result is newest
// first by deletion time, falling back to creation time.
func MergeDirectory(active, deleted []Person) []Person {
	seen := make(map[string]bool)
	var out []Person
	add := func(p Person) {
		if (p.Email != "" && seen["e:"+p.Email]) || (p.ID != "" && seen["i:"+p.ID]) {
			return
		}
		if p.Email != "" {
			seen["e:"+p.Email] = true
		}
		if p.ID != "" {
			seen["i:"+p.ID] = true
		}
		out = append(out, p)
	}
	for _, p := range deleted {
		p.Deleted = true
		add(p)
	}
	for _, p := range active {
		p.Deleted = false
		add(p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].sortTime().After(out[j].sortTime())
	})
	return out
}

// FilterDirectory keeps the people matching q on name, email, email local
// part, address, grid address, department or BPS.
func FilterDirectory(people []Person, q string) []Person {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return people
	}
	var out []Person
	for _, p := range people {
		local, _, _ := strings.Cut(p.Email, "@")
		for _, f := range []string{p.FullName, p.Email, local, p.Address, p.GridAddress, p.Department, p.BPS} {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
