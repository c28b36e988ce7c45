package explorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSharerName(t *testing.T) {
	assert.Equal(t, "Ann Lee", SharerName(Person{FullName: "Ann Lee", Email: "ann@x.io"}))
	assert.Equal(t, "bob", SharerName(Person{Email: "bob@x.io"}))
	assert.Equal(t, "Unknown User", SharerName(Person{}))
	assert.Equal(t, "Unknown User", SharerName(Person{FullName: "  "}))
}

func TestFileKind(t *testing.T) {
	assert.Equal(t, "PDF", FileKind("report.pdf"))
	assert.Equal(t, "GZ", FileKind("archive.tar.gz"))
	assert.Equal(t, "FILE", FileKind("README"))
	assert.Equal(t, "FILE", FileKind(".env"))
}

func TestShare_Text(t *testing.T) {
	at := time.Date(2024, 12, 16, 10, 30, 0, 0, time.Local)
	s := Share{
		Name:       "plan.docx",
		Sharer:     "Ann Lee",
		Size:       2048,
		UploadedAt: at,
		Link:       "http://files.local/api/files/42/content?inline=1",
	}
	text := s.Text()
	assert.Contains(t, text, "File Name: plan.docx\n")
	assert.Contains(t, text, "Shared By: Ann Lee\n")
	assert.Contains(t, text, "• Type: DOCX\n")
	assert.Contains(t, text, "• Size: 2.0 kB\n")
	assert.Contains(t, text, "• Uploaded: Dec 16, 2024 10:30\n")
	assert.Contains(t, text, "File Link: http://files.local/api/files/42/content?inline=1")
	assert.Equal(t, "plan.docx - Shared by Ann Lee", s.Title())
}
