package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"filepower/backend/app/dto"
	jwtutil "filepower/backend/app/jwt"
	"filepower/backend/app/metrics"
	"filepower/backend/app/middleware"
	"filepower/backend/app/services"
	"filepower/backend/global"
	"filepower/lockout"
)

type AuthController struct {
	Users  *services.UserService
	Signer *jwtutil.Signer
	Guard  *lockout.Guard
}

func NewAuthController(users *services.UserService, signer *jwtutil.Signer, guard *lockout.Guard) *AuthController {
	return &AuthController{Users: users, Signer: signer, Guard: guard}
}

func writeLocked(w http.ResponseWriter, err error) {
	var locked *lockout.LockedError
	if errors.As(err, &locked) {
		secs := int(math.Ceil(locked.Remaining.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	writeMessage(w, http.StatusTooManyRequests, err.Error())
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	key := strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Guard.Check(r.Context(), key); err != nil {
		if errors.Is(err, lockout.ErrLocked) {
			metrics.LoginFailures.WithLabelValues("locked").Inc()
			writeLocked(w, err)
			return
		}
		writeError(w, r, err)
		return
	}
	u, err := c.Users.ValidateCredentials(req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		metrics.LoginFailures.WithLabelValues("credentials").Inc()
		left, ferr := c.Guard.Fail(r.Context(), key)
		if errors.Is(ferr, lockout.ErrLocked) {
			writeLocked(w, ferr)
			return
		}
		if ferr != nil {
			global.Logger.Warn().Err(ferr).Msg("record failed login")
		}
		w.Header().Set("X-Attempts-Remaining", strconv.Itoa(left))
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := c.Guard.Reset(r.Context(), key); err != nil {
		global.Logger.Warn().Err(err).Msg("reset login attempts")
	}
	token, exp, err := c.Signer.Sign(jwtutil.Identity{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "token error")
		return
	}
	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		ExpiresAt:   exp,
		User:        dto.UserResponse{ID: u.ID, Email: u.Email, Role: u.Role, FullName: u.FullName},
	})
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	u, err := c.Users.Get(actor.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.UserResponse{ID: u.ID, Email: u.Email, Role: u.Role, FullName: u.FullName})
}
