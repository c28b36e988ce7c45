package services

import (
	"fmt"
	"strings"

	"filepower/backend/app/dto"
	"filepower/backend/app/models"
	"filepower/backend/app/repo"
	"filepower/explorer"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct{ users *repo.UserRepository }

func NewUserService(users *repo.UserRepository) *UserService { return &UserService{users: users} }

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (s *UserService) EnsureAdmin(email, password string) error {
	count, err := s.users.CountByEmail(normalizeEmail(email))
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = s.CreateUser(dto.CreateUserRequest{Email: email, Password: password, Role: models.RoleAdmin})
	return err
}

func (s *UserService) CreateUser(req dto.CreateUserRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password: %w", ErrInvalidInput)
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	existing, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("user %s: %w", email, ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         req.Role,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        req.Phone,
		Address:      req.Address,
		GridAddress:  req.GridAddress,
		Department:   req.Department,
		BPS:          req.BPS,
	}
	if err := s.users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) ValidateCredentials(email, password string) (*models.User, error) {
	u, err := s.users.FindByEmail(normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) Get(id string) (*models.User, error) {
	u, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// Directory merges active and deleted users, deleted records taking
// precedence.
func (s *UserService) Directory(query string) ([]explorer.Person, error) {
	active, err := s.users.ListActive()
	if err != nil {
		return nil, err
	}
	deleted, err := s.users.ListDeleted()
	if err != nil {
		return nil, err
	}
	people := explorer.MergeDirectory(toPeople(active), toPeople(deleted))
	return explorer.FilterDirectory(people, query), nil
}

// Lookup finds the profile behind an uploader email, deleted users included.
func (s *UserService) Lookup(email string) (*explorer.Person, error) {
	u, err := s.users.FindAnyByEmail(normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	p := toPerson(u)
	return &p, nil
}

func (s *UserService) Delete(actor Actor, id string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if actor.ID == id {
		return fmt.Errorf("cannot delete yourself: %w", ErrInvalidInput)
	}
	ok, err := s.users.SoftDelete(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func toPeople(users []*models.User) []explorer.Person {
	out := make([]explorer.Person, 0, len(users))
	for _, u := range users {
		out = append(out, toPerson(u))
	}
	return out
}

func toPerson(u *models.User) explorer.Person {
	created := u.CreatedAt
	p := explorer.Person{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Phone:       u.Phone,
		Address:     u.Address,
		GridAddress: u.GridAddress,
		Department:  u.Department,
		BPS:         u.BPS,
		Role:        u.Role,
		CreatedAt:   &created,
	}
	if u.DeletedAt.Valid {
		deleted := u.DeletedAt.Time
		p.DeletedAt = &deleted
		p.Deleted = true
	}
	return p
}
