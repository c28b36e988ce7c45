package explorer

import (
	"strings"
	"time"
	"unicode"
)

// Action is the kind of an activity log row.
type Action string

const (
	ActionUpload       Action = "UPLOAD"
	ActionDelete       Action = "DELETE"
	ActionRename       Action = "RENAME"
	ActionCreateFolder Action = "CREATE_FOLDER"
	ActionMove         Action = "MOVE"
	ActionRenameFolder Action = "RENAME_FOLDER"
	ActionDeleteFolder Action = "DELETE_FOLDER"

	// ActionAll disables the action filter.
	ActionAll Action = "ALL"
)

var Actions = []Action{
	ActionUpload, ActionDelete, ActionRename, ActionCreateFolder,
	ActionMove, ActionRenameFolder, ActionDeleteFolder,
}

func (a Action) Valid() bool {
	for _, x := range Actions {
		if x == a {
			return true
		}
	}
	return false
}

// Activity is one row of the activity log.
type Activity struct {
	ID        string
	UserEmail string
	UserName  string
	Action    Action
	FileName  string
	FileType  string
	FilePath  string
	OldName   string
	NewName   string
	CreatedAt time.Time
}

type ActivityFilter struct {
	Action   Action
	Query    string
	Location *time.Location
}

var activityDateLayouts = []string{
	"02/01/2006",
	"01/02/2006",
	"2006-01-02",
	"1/2/2006",
	"3:04:05 PM",
	"1/2/2006, 3:04:05 PM",
}

// FilterActivity keeps the rows that match the action and the query.
func FilterActivity(rows []Activity, f ActivityFilter) []Activity {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	out := make([]Activity, 0, len(rows))
	for _, r := range rows {
		if f.Action != "" && f.Action != ActionAll && r.Action != f.Action {
			continue
		}
		if q != "" && !activityMatches(r, q, loc) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func activityMatches(r Activity, q string, loc *time.Location) bool {
	fields := []string{r.FileName, r.UserEmail, r.UserName, r.FileType, string(r.Action), r.OldName, r.NewName, r.FilePath}
	if !r.CreatedAt.IsZero() {
		t := r.CreatedAt.In(loc)
		for _, layout := range activityDateLayouts {
			fields = append(fields, t.Format(layout))
		}
	}
	for _, s := range fields {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// SummarizeActivity counts rows per action. Every known action is present.
func SummarizeActivity(rows []Activity) map[Action]int {
	stats := make(map[Action]int, len(Actions))
	for _, a := range Actions {
		stats[a] = 0
	}
	for _, r := range rows {
		stats[r.Action]++
	}
	return stats
}

// PageStep is how many more rows "load more" reveals.
const PageStep = 20

// Page returns the first shown rows.
func Page[T any](rows []T, shown int) []T {
	if shown < 0 {
		shown = 0
	}
	if shown > len(rows) {
		shown = len(rows)
	}
	return rows[:shown]
}

// NameFromEmail derives a display name from an address:
// "jane.doe@example.com" gives "Jane Doe".
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.NewReplacer(".", " ", "_", " ").Replace(local)
	out := []rune(local)
	for i, r := range out {
		if i == 0 || !isWordRune(out[i-1]) {
			out[i] = unicode.ToUpper(r)
		}
	}
	return string(out)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// DisplayName picks the name shown for an activity author.
func DisplayName(email string, names map[string]string) string {
	if n := names[email]; n != "" {
		return n
	}
	if n := NameFromEmail(email); n != "" {
		return n
	}
	if email != "" {
		return email
	}
	return "Unknown"
}
