package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"filepower/backend/app/models"
	"filepower/backend/app/repo"
	"filepower/backend/app/storage"
	"filepower/backend/global"
	"filepower/explorer"
)

const (
	rootFolderName    = "root"
	unknownFolderName = "Unknown Folder"
)

type FolderService struct {
	folders  *repo.FolderRepository
	files    *repo.FileRepository
	bucket   *storage.Bucket
	activity *ActivityService
	now      func() time.Time
}

func NewFolderService(folders *repo.FolderRepository, files *repo.FileRepository, bucket *storage.Bucket, activity *ActivityService) *FolderService {
	return &FolderService{folders: folders, files: files, bucket: bucket, activity: activity, now: time.Now}
}

// Name resolves a folder id for log rows: "root" for nil, "Unknown Folder"
// when the folder is gone.
func (s *FolderService) Name(id *string) string {
	if id == nil {
		return rootFolderName
	}
	f, err := s.folders.FindByID(*id)
	if err != nil || f == nil {
		return unknownFolderName
	}
	return f.Name
}

func (s *FolderService) Get(id string) (*models.Folder, error) {
	f, err := s.folders.FindByID(id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("folder %s: %w", id, ErrNotFound)
	}
	return f, nil
}

func (s *FolderService) List(parentID *string) ([]*models.Folder, error) {
	return s.folders.ListByParent(parentID)
}

func (s *FolderService) ListAll() ([]*models.Folder, error) {
	return s.folders.ListAll()
}

func nameError(err error) error {
	switch {
	case errors.Is(err, explorer.ErrNameTaken):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case err != nil:
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func (s *FolderService) Create(actor Actor, name string, parentID *string) (*Result[*models.Folder], error) {
	name = strings.TrimSpace(name)
	if actor.ID == "" {
		return nil, fmt.Errorf("user required: %w", ErrInvalidInput)
	}
	if parentID != nil {
		if _, err := s.Get(*parentID); err != nil {
			return nil, err
		}
	}
	siblings, err := s.folders.SiblingNames(parentID, "")
	if err != nil {
		return nil, err
	}
	if err := nameError(explorer.ValidateFolderName(name, "", siblings)); err != nil {
		return nil, err
	}

	f := &models.Folder{
		Name:           name,
		OriginalName:   name,
		ParentID:       parentID,
		CreatedBy:      actor.ID,
		CreatedByEmail: actor.Email,
	}
	if err := s.folders.Create(f); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	s.activity.Record(actor, models.FileLog{
		Action:   explorer.ActionCreateFolder,
		FileName: f.Name,
		FilePath: s.Name(parentID),
	})
	return &Result[*models.Folder]{Record: f, Affected: affected(parentID)}, nil
}

// Rename changes a folder's name. Renaming to the current name is a no-op
// with nothing affected.
func (s *FolderService) Rename(actor Actor, id, name string) (*Result[*models.Folder], error) {
	f, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	siblings, err := s.folders.SiblingNames(f.ParentID, f.ID)
	if err != nil {
		return nil, err
	}
	err = explorer.ValidateFolderName(name, f.Name, siblings)
	if errors.Is(err, explorer.ErrNameUnchanged) {
		return &Result[*models.Folder]{Record: f}, nil
	}
	if err := nameError(err); err != nil {
		return nil, err
	}

	newName := strings.TrimSpace(name)
	ok, err := s.folders.Rename(f.ID, newName, actor.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("rename folder: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, ErrNotFound)
	}
	updated, err := s.Get(f.ID)
	if err != nil {
		return nil, err
	}
	s.activity.Record(actor, models.FileLog{
		Action:      explorer.ActionRenameFolder,
		FileName:    newName,
		FilePath:    s.Name(f.ParentID),
		OldFileName: f.Name,
		NewFileName: newName,
	})
	return &Result[*models.Folder]{Record: updated, Affected: affected(f.ParentID)}, nil
}

// Delete removes a folder with everything below it. Stored objects are
// removed best effort; the metadata is removed in one transaction.
func (s *FolderService) Delete(actor Actor, id string) (*Result[*models.Folder], error) {
	f, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	ids, err := s.folders.Subtree(f.ID)
	if err != nil {
		return nil, fmt.Errorf("collect subtree: %w", err)
	}
	files, err := s.files.ListByFolders(ids)
	if err != nil {
		return nil, fmt.Errorf("collect files: %w", err)
	}
	for _, file := range files {
		if err := s.bucket.Remove(file.Path); err != nil {
			global.Logger.Warn().Err(err).Str("path", file.Path).Msg("remove object of deleted folder")
		}
	}
	if err := s.folders.DeleteTree(ids); err != nil {
		return nil, fmt.Errorf("delete folder: %w", err)
	}
	if still, err := s.folders.FindByID(f.ID); err != nil || still != nil {
		return nil, fmt.Errorf("folder %s still present after delete: %v", f.ID, err)
	}
	s.activity.Record(actor, models.FileLog{
		Action:   explorer.ActionDeleteFolder,
		FileName: f.Name,
		FilePath: s.Name(f.ParentID),
	})
	return &Result[*models.Folder]{Record: f, Affected: affected(f.ParentID)}, nil
}
