package controllers

import (
	"net/http"
	"time"

	"filepower/backend/app/dto"
	"filepower/backend/app/middleware"
	"filepower/backend/app/services"
	"filepower/explorer"

	"github.com/go-chi/chi/v5"
)

// AdminController serves the user directory and user management.
type AdminController struct{ Users *services.UserService }

func NewAdminController(users *services.UserService) *AdminController {
	return &AdminController{Users: users}
}

func (c *AdminController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := c.Users.CreateUser(req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.UserResponse{ID: u.ID, Email: u.Email, Role: u.Role, FullName: u.FullName})
}

func (c *AdminController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := c.Users.Delete(middleware.GetActor(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *AdminController) Directory(w http.ResponseWriter, r *http.Request) {
	people, err := c.Users.Directory(r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := dto.ListResponse[dto.PersonResponse]{Data: make([]dto.PersonResponse, 0, len(people))}
	for _, p := range people {
		resp.Data = append(resp.Data, toPersonResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *AdminController) Lookup(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeMessage(w, http.StatusBadRequest, "email is required")
		return
	}
	p, err := c.Users.Lookup(email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(*p))
}

func toPersonResponse(p explorer.Person) dto.PersonResponse {
	return dto.PersonResponse{
		ID: p.ID, Email: p.Email, FullName: p.FullName, Phone: p.Phone,
		Address: p.Address, GridAddress: p.GridAddress, Department: p.Department, BPS: p.BPS,
		Role: p.Role, CreatedAt: utc(p.CreatedAt), DeletedAt: utc(p.DeletedAt), Deleted: p.Deleted,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
