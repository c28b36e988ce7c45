package models

import (
	"time"

	"filepower/explorer"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Folder is a node of the shared tree. A nil ParentID is the root.
type Folder struct {
	ID             string  `gorm:"primaryKey;size:36"`
	Name           string  `gorm:"size:255;not null"`
	OriginalName   string  `gorm:"size:255"`
	ParentID       *string `gorm:"size:36;index"`
	CreatedBy      string  `gorm:"size:36"`
	CreatedByEmail string  `gorm:"size:191"`
	LastRenamedBy  *string `gorm:"size:36"`
	LastRenamedAt  *time.Time
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time

	// filled by listing queries
	FileCount   int64 `gorm:"->;-:migration"`
	FolderCount int64 `gorm:"->;-:migration"`
}

func (f *Folder) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// File is the metadata of an uploaded object. Path is the object key in the
// bucket.
type File struct {
	ID            string    `gorm:"primaryKey;size:36"`
	Name          string    `gorm:"size:255;not null;index"`
	Path          string    `gorm:"size:1024;not null"`
	Size          int64     `gorm:"not null"`
	MimeType      string    `gorm:"size:127"`
	FolderID      *string   `gorm:"size:36;index"`
	UploadedBy    string    `gorm:"size:36;index"`
	UploaderEmail string    `gorm:"size:191"`
	UploadedAt    time.Time `gorm:"index"`
	LastRenamedBy *string   `gorm:"size:36"`
	LastRenamedAt *time.Time
	LastMovedBy   *string `gorm:"size:36"`
	LastMovedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (f *File) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now()
	}
	return nil
}

// FileLog is an append-only activity row.
type FileLog struct {
	ID          uint            `gorm:"primaryKey"`
	UserID      string          `gorm:"size:36;index"`
	UserEmail   string          `gorm:"size:191;index"`
	Action      explorer.Action `gorm:"size:32;index;not null"`
	FileName    string          `gorm:"size:255"`
	FileType    string          `gorm:"size:127"`
	FileSize    int64
	FilePath    string    `gorm:"size:1024"`
	OldFileName string    `gorm:"size:255"`
	NewFileName string    `gorm:"size:255"`
	CreatedAt   time.Time `gorm:"index"`
}

func (FileLog) TableName() string { return "user_file_logs" }

// All lists the models managed by AutoMigrate.
func All() []any {
	return []any{&User{}, &Folder{}, &File{}, &FileLog{}}
}
