package dto

import "time"

type ActivityRow struct {
	ID          string    `json:"id"`
	UserEmail   string    `json:"user_email"`
	UserName    string    `json:"user_name"`
	Action      string    `json:"action"`
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type,omitempty"`
	FilePath    string    `json:"file_path,omitempty"`
	OldFileName string    `json:"old_file_name,omitempty"`
	NewFileName string    `json:"new_file_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ActivityResponse struct {
	Data  []ActivityRow    `json:"data"`
	Stats map[string]int64 `json:"stats"`
}

type PersonResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	GridAddress string     `json:"grid_address,omitempty"`
	Department  string     `json:"department,omitempty"`
	BPS         string     `json:"bps,omitempty"`
	Role        string     `json:"role,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	Deleted     bool       `json:"deleted"`
}
