package repo

import (
	"fmt"
	"time"

	"filepower/backend/app/models"

	"gorm.io/gorm"
)

type FolderRepository struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) Create(f *models.Folder) error { return r.db.Create(f).Error }

func (r *FolderRepository) FindByID(id string) (*models.Folder, error) {
	return findOne[models.Folder](r.db.Where("id = ?", id))
}

const folderWithCounts = "folders.*, " +
	"(SELECT COUNT(*) FROM files WHERE files.folder_id = folders.id) AS file_count, " +
	"(SELECT COUNT(*) FROM folders AS sub WHERE sub.parent_id = folders.id) AS folder_count"

func byParent(q *gorm.DB, column string, parentID *string) *gorm.DB {
	if parentID == nil {
		return q.Where(column + " IS NULL")
	}
	return q.Where(column+" = ?", *parentID)
}

// ListByParent returns the sub-folders of parentID, newest first, with their
// child counts.
func (r *FolderRepository) ListByParent(parentID *string) ([]*models.Folder, error) {
	var folders []*models.Folder
	q := r.db.Model(&models.Folder{}).Select(folderWithCounts)
	err := byParent(q, "folders.parent_id", parentID).
		Order("folders.created_at DESC").
		Find(&folders).Error
	return folders, err
}

// ListAll returns every folder, for the move picker and name lookups.
func (r *FolderRepository) ListAll() ([]*models.Folder, error) {
	var folders []*models.Folder
	return folders, r.db.Model(&models.Folder{}).Select(folderWithCounts).Order("folders.name ASC").Find(&folders).Error
}

// SiblingNames returns the names of the folders under parentID, except
// excludeID.
func (r *FolderRepository) SiblingNames(parentID *string, excludeID string) ([]string, error) {
	var names []string
	q := byParent(r.db.Model(&models.Folder{}), "parent_id", parentID)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	return names, q.Pluck("name", &names).Error
}

// Rename updates the folder name. It reports false when no row matched.
func (r *FolderRepository) Rename(id, name, by string, at time.Time) (bool, error) {
	res := r.db.Model(&models.Folder{}).Where("id = ?", id).Updates(map[string]any{
		"name":            name,
		"last_renamed_by": by,
		"last_renamed_at": at,
	})
	return res.RowsAffected > 0, res.Error
}

// Subtree returns id followed by the ids of all folders below it.
func (r *FolderRepository) Subtree(id string) ([]string, error) {
	ids := []string{id}
	frontier := []string{id}
	for len(frontier) > 0 {
		var children []string
		if err := r.db.Model(&models.Folder{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		ids = append(ids, children...)
		frontier = children
	}
	return ids, nil
}

// DeleteTree removes the folders in ids and every file they hold.
func (r *FolderRepository) DeleteTree(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("folder_id IN ?", ids).Delete(&models.File{}).Error; err != nil {
			return fmt.Errorf("delete files: %w", err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Folder{}).Error; err != nil {
			return fmt.Errorf("delete folders: %w", err)
		}
		return nil
	})
}

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(f *models.File) error { return r.db.Create(f).Error }

func (r *FileRepository) FindByID(id string) (*models.File, error) {
	return findOne[models.File](r.db.Where("id = ?", id))
}

// ListByFolder returns the files directly inside folderID, newest first.
func (r *FileRepository) ListByFolder(folderID *string) ([]*models.File, error) {
	var files []*models.File
	err := byParent(r.db.Model(&models.File{}), "folder_id", folderID).
		Order("uploaded_at DESC").
		Find(&files).Error
	return files, err
}

func (r *FileRepository) ListByFolders(ids []string) ([]*models.File, error) {
	var files []*models.File
	if len(ids) == 0 {
		return files, nil
	}
	return files, r.db.Where("folder_id IN ?", ids).Find(&files).Error
}

// ExistsByName reports whether folderID already holds a file called name.
func (r *FileRepository) ExistsByName(name string, folderID *string) (bool, error) {
	var count int64
	err := byParent(r.db.Model(&models.File{}), "folder_id", folderID).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}

// ListNewest returns one page of all files, newest upload first.
func (r *FileRepository) ListNewest(offset, limit int) ([]*models.File, error) {
	var files []*models.File
	err := r.db.Model(&models.File{}).
		Order("uploaded_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&files).Error
	return files, err
}

func (r *FileRepository) Rename(id, name, path, by string, at time.Time) (bool, error) {
	res := r.db.Model(&models.File{}).Where("id = ?", id).Updates(map[string]any{
		"name":            name,
		"path":            path,
		"last_renamed_by": by,
		"last_renamed_at": at,
	})
	return res.RowsAffected > 0, res.Error
}

func (r *FileRepository) Move(id string, folderID *string, path, by string, at time.Time) (bool, error) {
	res := r.db.Model(&models.File{}).Where("id = ?", id).Updates(map[string]any{
		"folder_id":     folderID,
		"path":          path,
		"last_moved_by": by,
		"last_moved_at": at,
	})
	return res.RowsAffected > 0, res.Error
}

func (r *FileRepository) Delete(id string) (bool, error) {
	res := r.db.Where("id = ?", id).Delete(&models.File{})
	return res.RowsAffected > 0, res.Error
}
