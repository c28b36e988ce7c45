package explorer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFolderName(t *testing.T) {
	siblings := []string{"Reports", "Drawings"}

	assert.ErrorIs(t, ValidateFolderName("  ", "", siblings), ErrNameRequired)
	assert.ErrorIs(t, ValidateFolderName("reports", "", siblings), ErrNameTaken)
	assert.ErrorIs(t, ValidateFolderName("Drawings ", "Drawings", siblings), ErrNameUnchanged)
	assert.NoError(t, ValidateFolderName("Archive", "", siblings))
	// renaming Drawings: its siblings are the other folders
	others := []string{"Reports"}
	assert.NoError(t, ValidateFolderName("drawings", "Drawings", others))
	assert.ErrorIs(t, ValidateFolderName("REPORTS", "Drawings", others), ErrNameTaken)
}

func TestSplitExt(t *testing.T) {
	tests := []struct{ in, base, ext string }{
		{"report.pdf", "report", ".pdf"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"README", "README", ""},
		{".env", ".env", ""},
	}
	for _, tt := range tests {
		base, ext := SplitExt(tt.in)
		assert.Equal(t, tt.base, base, tt.in)
		assert.Equal(t, tt.ext, ext, tt.in)
	}
}

func TestRenameKeepingExt(t *testing.T) {
	got, err := RenameKeepingExt("report.pdf", " summary ")
	require.NoError(t, err)
	assert.Equal(t, "summary.pdf", got)

	got, err = RenameKeepingExt("report.pdf", "summary.PDF")
	require.NoError(t, err)
	assert.Equal(t, "summary.pdf", got)

	got, err = RenameKeepingExt("README", "NOTES")
	require.NoError(t, err)
	assert.Equal(t, "NOTES", got)

	_, err = RenameKeepingExt("report.pdf", ".pdf")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestKeepBothName(t *testing.T) {
	at := time.Unix(1718000000, 0)

	assert.Equal(t, "report (1718000000).pdf", KeepBothName("report.pdf", at))
	assert.Equal(t, "README (1718000000)", KeepBothName("README", at))
	assert.Equal(t, "report.pdf", BaseName(KeepBothName("report.pdf", at)))
}
