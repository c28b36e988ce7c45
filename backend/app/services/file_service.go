package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"filepower/backend/app/models"
	"filepower/backend/app/repo"
	"filepower/backend/app/storage"
	"filepower/backend/global"
	"filepower/explorer"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultMaxUploadBytes int64 = 50 << 20

// UploadMode says what to do when the folder already has a file with the
// same name.
type UploadMode string

const (
	UploadNew      UploadMode = "new"
	UploadKeepBoth UploadMode = "keep_both"
)

type UploadInput struct {
	Name     string
	FolderID *string
	Mode     UploadMode
	Size     int64 // -1 when unknown
	MimeType string
	Body     io.Reader
}

type FileService struct {
	files    *repo.FileRepository
	folders  *FolderService
	bucket   *storage.Bucket
	activity *ActivityService
	maxBytes int64
	now      func() time.Time
}

func NewFileService(files *repo.FileRepository, folders *FolderService, bucket *storage.Bucket, activity *ActivityService, maxBytes int64) *FileService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &FileService{files: files, folders: folders, bucket: bucket, activity: activity, maxBytes: maxBytes, now: time.Now}
}

func (s *FileService) MaxBytes() int64 { return s.maxBytes }

func (s *FileService) Get(id string) (*models.File, error) {
	f, err := s.files.FindByID(id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	return f, nil
}

func (s *FileService) List(folderID *string) ([]*models.File, error) {
	return s.files.ListByFolder(folderID)
}

const (
	DefaultSearchLimit = 1000
	searchBatch        = 500
)

// Search returns up to limit files from any folder that match query, newest
// first. Matching is explorer.Matches: name, uploader email and the date
// renderings of the upload time in loc.
func (s *FileService) Search(query string, limit int, loc *time.Location) ([]*models.File, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	var out []*models.File
	for offset := 0; ; offset += searchBatch {
		page, err := s.files.ListNewest(offset, searchBatch)
		if err != nil {
			return nil, fmt.Errorf("search files: %w", err)
		}
		for _, f := range page {
			if !explorer.Matches(searchEntry(f), query, loc) {
				continue
			}
			out = append(out, f)
			if len(out) == limit {
				return out, nil
			}
		}
		if len(page) < searchBatch {
			return out, nil
		}
	}
}

func searchEntry(f *models.File) explorer.Entry {
	return explorer.Entry{ID: f.ID, Name: f.Name, Email: f.UploaderEmail, Timestamp: f.UploadedAt}
}

func (s *FileService) Exists(name string, folderID *string) (bool, error) {
	return s.files.ExistsByName(strings.TrimSpace(name), folderID)
}

func validFileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("file name %q: %w", name, ErrInvalidInput)
	}
	return name, nil
}

// sniffLen is how much of the body is buffered for type detection.
const sniffLen = 3072

// Upload stores the body and records its metadata. The object is written
// first; if the metadata insert fails the object is removed again.
func (s *FileService) Upload(actor Actor, in UploadInput) (*Result[*models.File], error) {
	name, err := validFileName(in.Name)
	if err != nil {
		return nil, err
	}
	if in.Size > s.maxBytes {
		return nil, fmt.Errorf("%s is %d bytes, limit %d: %w", name, in.Size, s.maxBytes, ErrTooLarge)
	}
	if in.FolderID != nil {
		if _, err := s.folders.Get(*in.FolderID); err != nil {
			return nil, err
		}
	}
	exists, err := s.files.ExistsByName(name, in.FolderID)
	if err != nil {
		return nil, fmt.Errorf("check existing: %w", err)
	}
	if exists {
		if in.Mode != UploadKeepBoth {
			return nil, fmt.Errorf("file %s: %w", name, ErrConflict)
		}
		if name, err = s.freeKeepBothName(name, in.FolderID); err != nil {
			return nil, err
		}
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	mimeType := in.MimeType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(head).String()
	}

	key := storage.ObjectKey(actor.ID, in.FolderID, name)
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), in.Body), s.maxBytes+1)
	written, err := s.bucket.Put(key, body)
	if err != nil {
		return nil, objectError(err)
	}
	if written > s.maxBytes {
		s.removeOrphan(key)
		return nil, fmt.Errorf("%s exceeds %d bytes: %w", name, s.maxBytes, ErrTooLarge)
	}

	f := &models.File{
		Name:          name,
		Path:          key,
		Size:          written,
		MimeType:      mimeType,
		FolderID:      in.FolderID,
		UploadedBy:    actor.ID,
		UploaderEmail: actor.Email,
		UploadedAt:    s.now(),
	}
	if err := s.files.Create(f); err != nil {
		s.removeOrphan(key)
		return nil, fmt.Errorf("save file metadata: %w", err)
	}
	s.activity.Record(actor, models.FileLog{
		Action:   explorer.ActionUpload,
		FileName: f.Name,
		FileType: f.MimeType,
		FileSize: f.Size,
		FilePath: f.Path,
	})
	return &Result[*models.File]{Record: f, Affected: affected(in.FolderID)}, nil
}

// keepBothTries bounds the search for a free keep-both name.
const keepBothTries = 100

// freeKeepBothName returns the first keep-both name for name that no file in
// folderID uses yet. Candidates step the timestamp forward one second at a
// time so uploads within the same second still get distinct names.
func (s *FileService) freeKeepBothName(name string, folderID *string) (string, error) {
	at := s.now()
	for i := 0; i < keepBothTries; i++ {
		candidate := explorer.KeepBothName(name, at.Add(time.Duration(i)*time.Second))
		taken, err := s.files.ExistsByName(candidate, folderID)
		if err != nil {
			return "", fmt.Errorf("check existing: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free name for %s: %w", name, ErrConflict)
}

// objectError maps a clash in the bucket to ErrConflict.
func objectError(err error) error {
	if errors.Is(err, storage.ErrObjectExists) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}

func (s *FileService) removeOrphan(key string) {
	if err := s.bucket.Remove(key); err != nil {
		global.Logger.Warn().Err(err).Str("path", key).Msg("remove orphaned object")
	}
}

// Open returns the file metadata and a reader over its content.
func (s *FileService) Open(id string) (*models.File, io.ReadCloser, int64, error) {
	f, err := s.Get(id)
	if err != nil {
		return nil, nil, 0, err
	}
	rc, size, err := s.bucket.Get(f.Path)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil, 0, fmt.Errorf("content of %s: %w", f.Name, ErrNotFound)
	}
	if err != nil {
		return nil, nil, 0, err
	}
	return f, rc, size, nil
}

// Rename changes the display name and moves the object to the matching key.
func (s *FileService) Rename(actor Actor, id, newName string) (*Result[*models.File], error) {
	f, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	name, err := validFileName(newName)
	if err != nil {
		return nil, err
	}
	if name == f.Name {
		return &Result[*models.File]{Record: f}, nil
	}
	exists, err := s.files.ExistsByName(name, f.FolderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("file %s: %w", name, ErrConflict)
	}

	key := storage.ObjectKey(f.UploadedBy, f.FolderID, name)
	if err := s.bucket.Move(f.Path, key); err != nil {
		return nil, objectError(err)
	}
	ok, err := s.files.Rename(f.ID, name, key, actor.ID, s.now())
	if err != nil || !ok {
		if mvErr := s.bucket.Move(key, f.Path); mvErr != nil {
			global.Logger.Error().Err(mvErr).Str("file", f.ID).Msg("restore object after failed rename")
		}
		if err == nil {
			err = ErrNotFound
		}
		return nil, fmt.Errorf("rename file: %w", err)
	}
	updated, err := s.Get(f.ID)
	if err != nil {
		return nil, err
	}
	s.activity.Record(actor, models.FileLog{
		Action:      explorer.ActionRename,
		FileName:    name,
		FileType:    f.MimeType,
		FilePath:    key,
		OldFileName: f.Name,
		NewFileName: name,
	})
	return &Result[*models.File]{Record: updated, Affected: affected(f.FolderID)}, nil
}

// Move puts a file into another folder; nil is the root.
func (s *FileService) Move(actor Actor, id string, dest *string) (*Result[*models.File], error) {
	f, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sameFolder(f.FolderID, dest) {
		return nil, fmt.Errorf("file is already in that folder: %w", ErrInvalidInput)
	}
	if dest != nil {
		if _, err := s.folders.Get(*dest); err != nil {
			return nil, err
		}
	}
	exists, err := s.files.ExistsByName(f.Name, dest)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("file %s in destination: %w", f.Name, ErrConflict)
	}

	key := storage.ObjectKey(f.UploadedBy, dest, f.Name)
	if err := s.bucket.Move(f.Path, key); err != nil {
		return nil, objectError(err)
	}
	ok, err := s.files.Move(f.ID, dest, key, actor.ID, s.now())
	if err != nil || !ok {
		if mvErr := s.bucket.Move(key, f.Path); mvErr != nil {
			global.Logger.Error().Err(mvErr).Str("file", f.ID).Msg("restore object after failed move")
		}
		if err == nil {
			err = ErrNotFound
		}
		return nil, fmt.Errorf("move file: %w", err)
	}
	updated, err := s.Get(f.ID)
	if err != nil {
		return nil, err
	}
	s.activity.Record(actor, models.FileLog{
		Action:      explorer.ActionMove,
		FileName:    f.Name,
		FileType:    f.MimeType,
		FilePath:    key,
		OldFileName: s.folders.Name(f.FolderID),
		NewFileName: s.folders.Name(dest),
	})
	return &Result[*models.File]{Record: updated, Affected: affected(f.FolderID, dest)}, nil
}

// Delete removes the object then the metadata. Only admins may delete files.
func (s *FileService) Delete(actor Actor, id string) (*Result[*models.File], error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	f, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.bucket.Remove(f.Path); err != nil {
		return nil, err
	}
	ok, err := s.files.Delete(f.ID)
	if err != nil {
		return nil, fmt.Errorf("delete file: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	s.activity.Record(actor, models.FileLog{
		Action:   explorer.ActionDelete,
		FileName: f.Name,
		FileType: f.MimeType,
		FileSize: f.Size,
		FilePath: f.Path,
	})
	return &Result[*models.File]{Record: f, Affected: affected(f.FolderID)}, nil
}

func sameFolder(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
