package repo

import (
	"filepower/backend/app/models"

	"gorm.io/gorm"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) CountByEmail(email string) (int64, error) {
	var count int64
	return count, r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
}

func (r *UserRepository) Create(u *models.User) error { return r.db.Create(u).Error }

// FindByEmail returns the active user with email, or nil.
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	return findOne[models.User](r.db.Where("email = ?", email))
}

// FindAnyByEmail also looks at deleted users, newest first.
func (r *UserRepository) FindAnyByEmail(email string) (*models.User, error) {
	return findOne[models.User](r.db.Unscoped().Where("email = ?", email).Order("created_at DESC"))
}

func (r *UserRepository) FindByID(id string) (*models.User, error) {
	return findOne[models.User](r.db.Where("id = ?", id))
}

func (r *UserRepository) ListActive() ([]*models.User, error) {
	var users []*models.User
	return users, r.db.Order("created_at DESC").Find(&users).Error
}

func (r *UserRepository) ListDeleted() ([]*models.User, error) {
	var users []*models.User
	return users, r.db.Unscoped().Where("deleted_at IS NOT NULL").Order("deleted_at DESC").Find(&users).Error
}

// NamesByEmail maps every known email, deleted users included, to its
// full name.
func (r *UserRepository) NamesByEmail(emails []string) (map[string]string, error) {
	out := make(map[string]string, len(emails))
	if len(emails) == 0 {
		return out, nil
	}
	var users []*models.User
	if err := r.db.Unscoped().Select("email", "full_name").Where("email IN ?", emails).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.FullName != "" {
			out[u.Email] = u.FullName
		} else if _, ok := out[u.Email]; !ok {
			out[u.Email] = ""
		}
	}
	return out, nil
}

// SoftDelete marks the user deleted. It reports false when no active user
// has id.
func (r *UserRepository) SoftDelete(id string) (bool, error) {
	res := r.db.Where("id = ?", id).Delete(&models.User{})
	return res.RowsAffected > 0, res.Error
}
