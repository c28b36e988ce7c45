package explorer

import (
	"fmt"
	"strings"
	"time"
)

// Share is the message handed out when a file is shared.
type Share struct {
	Name       string
	Sharer     string
	Size       int64
	UploadedAt time.Time
	Link       string
}

// SharerName names the uploader of a shared file. A missing directory
// record gives "Unknown User".
func SharerName(p Person) string {
	if strings.TrimSpace(p.FullName) == "" && p.Email == "" {
		return "Unknown User"
	}
	return p.Label()
}

// FileKind is the upper-case extension of name, or "FILE" without one.
func FileKind(name string) string {
	_, ext := SplitExt(name)
	if ext == "" {
		return "FILE"
	}
	return strings.ToUpper(strings.TrimPrefix(ext, "."))
}

func (s Share) Title() string {
	return s.Name + " - Shared by " + s.Sharer
}

func (s Share) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "File Name: %s\n\n", s.Name)
	fmt.Fprintf(&b, "Shared By: %s\n\n", s.Sharer)
	b.WriteString("File Details:\n")
	fmt.Fprintf(&b, "  • Type: %s\n", FileKind(s.Name))
	fmt.Fprintf(&b, "  • Size: %s\n", HumanSize(s.Size))
	fmt.Fprintf(&b, "  • Uploaded: %s\n\n", ShortDate(s.UploadedAt))
	fmt.Fprintf(&b, "File Link: %s", s.Link)
	return b.String()
}
