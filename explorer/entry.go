// Package explorer holds the client-side file browser logic: duplicate
// grouping, folder navigation and the search/sort pipeline. It has no UI or
// transport dependencies.
package explorer

import "time"

// Entry is one row of a folder listing, either a folder or a file.
type Entry struct {
	ID        string
	Name      string
	Folder    bool
	Email     string
	Timestamp time.Time
	Size      int64
	MimeType  string
	FolderID  *string

	// Folder only.
	FileCount   int64
	FolderCount int64
}

func (e Entry) IsFile() bool { return !e.Folder }

// epoch is used in place of a missing upload time.
var epoch = time.Unix(0, 0).UTC()

func (e Entry) sortTime() time.Time {
	if e.Timestamp.IsZero() {
		return epoch
	}
	return e.Timestamp
}
