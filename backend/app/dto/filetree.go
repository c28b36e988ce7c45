package dto

import "time"

type CreateFolderRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	ParentID *string `json:"parent_id"`
}

type RenameRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type MoveRequest struct {
	FolderID *string `json:"folder_id"`
}

type FolderResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	OriginalName   string     `json:"original_name,omitempty"`
	ParentID       *string    `json:"parent_id"`
	CreatedBy      string     `json:"created_by"`
	CreatedByEmail string     `json:"created_by_email"`
	CreatedAt      time.Time  `json:"created_at"`
	LastRenamedBy  *string    `json:"last_renamed_by,omitempty"`
	LastRenamedAt  *time.Time `json:"last_renamed_at,omitempty"`
	FileCount      int64      `json:"file_count"`
	FolderCount    int64      `json:"folder_count"`
}

type FileResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Path          string     `json:"path"`
	Size          int64      `json:"size"`
	MimeType      string     `json:"mime_type"`
	FolderID      *string    `json:"folder_id"`
	UploadedBy    string     `json:"uploaded_by"`
	UploaderEmail string     `json:"uploader_email"`
	UploadedAt    time.Time  `json:"uploaded_at"`
	LastRenamedBy *string    `json:"last_renamed_by,omitempty"`
	LastRenamedAt *time.Time `json:"last_renamed_at,omitempty"`
	LastMovedBy   *string    `json:"last_moved_by,omitempty"`
	LastMovedAt   *time.Time `json:"last_moved_at,omitempty"`
}

// MutationResponse wraps the record a mutation touched and the folders whose
// listing changed (null is the root).
type MutationResponse[T any] struct {
	Data     T         `json:"data"`
	Affected []*string `json:"affected"`
}

type ListResponse[T any] struct {
	Data []T `json:"data"`
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
}
