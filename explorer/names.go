package explorer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNameRequired  = errors.New("name is required")
	ErrNameUnchanged = errors.New("name is unchanged")
	ErrNameTaken     = errors.New("a folder with this name already exists")
)

// ValidateFolderName checks a new or renamed folder name against the other
// folders of the same parent. current is the folder's present name, empty on
// create.
func ValidateFolderName(name, current string, siblings []string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if current != "" && name == strings.TrimSpace(current) {
		return ErrNameUnchanged
	}
	for _, s := range siblings {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return ErrNameTaken
		}
	}
	return nil
}

// SplitExt splits name at its last dot. Dotfiles and names without a dot
// have no extension.
func SplitExt(name string) (base, ext string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return name, ""
	}
	return name[:i], name[i:]
}

// RenameKeepingExt replaces the base of old with newBase and keeps old's
// extension.
func RenameKeepingExt(old, newBase string) (string, error) {
	newBase = strings.TrimSpace(newBase)
	_, ext := SplitExt(old)
	if ext != "" && strings.HasSuffix(strings.ToLower(newBase), strings.ToLower(ext)) {
		newBase = strings.TrimSpace(newBase[:len(newBase)-len(ext)])
	}
	if newBase == "" {
		return "", ErrNameRequired
	}
	return newBase + ext, nil
}

// KeepBothName renames an incoming upload that clashes with an existing
// file: "report.pdf" becomes "report (1718000000).pdf".
func KeepBothName(name string, at time.Time) string {
	base, ext := SplitExt(name)
	return fmt.Sprintf("%s (%d)%s", base, at.Unix(), ext)
}
