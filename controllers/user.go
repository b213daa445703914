package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go-medicamp/middleware"
	"go-medicamp/models"
	"go-medicamp/notify"
	"go-medicamp/utils"

	"github.com/gorilla/mux"
)

// UserStore is the persistence used by UserController
type UserStore interface {
	UpsertUser(ctx context.Context, u models.User) (*models.User, bool, error)
	FindUser(ctx context.Context, email string) (*models.User, error)
	RequestStatus(ctx context.Context, email string) error
	ListUsersExcept(ctx context.Context, email string) ([]models.User, error)
	SetRole(ctx context.Context, email, role string) error
}

// UserController handles user-related requests
type UserController struct {
	Store    UserStore
	Notifier notify.Notifier
}

// NewUserController creates a new UserController
func NewUserController(store UserStore, notifier notify.Notifier) *UserController {
	return &UserController{Store: store, Notifier: notifier}
}

// CreateUser saves a user on first login. A repeated call returns the stored
// record unchanged.
func (uc *UserController) CreateUser(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	// the body is optional profile data
	var user models.User
	if err := decodeJSON(r, &user); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}
	user.Email = email

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	stored, created, err := uc.Store.UpsertUser(ctx, user)
	if err != nil {
		writeError(w, r, err, "User not found")
		return
	}

	if !created {
		writeJSON(w, http.StatusOK, stored)
		return
	}
	uc.Notifier.Notify(r.Context(), utils.WelcomeEmail(stored.Email, stored.Name))
	writeJSON(w, http.StatusCreated, stored)
}

// RequestStatus asks the admins for a role change
func (uc *UserController) RequestStatus(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := uc.Store.RequestStatus(ctx, email); err != nil {
		writeError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": models.StatusRequested})
}

// GetRole returns the stored role of a user. Unknown users get an empty object.
func (uc *UserController) GetRole(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	user, err := uc.Store.FindUser(ctx, email)
	if err != nil && !isNotFound(err) {
		writeError(w, r, err, "User not found")
		return
	}

	resp := struct {
		Role string `json:"role,omitempty"`
	}{}
	if user != nil {
		resp.Role = user.Role
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListUsers returns every user except the admin making the request
func (uc *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	users, err := uc.Store.ListUsersExcept(ctx, email)
	if err != nil {
		writeError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateRole assigns a role and marks the user Verified (admin only)
func (uc *UserController) UpdateRole(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	var body models.RoleUpdate
	if !decodeValid(w, r, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := uc.Store.SetRole(ctx, email, body.Role); err != nil {
		writeError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "role": body.Role, "status": models.StatusVerified})
}

// callerEmail returns the email of the authenticated caller
func callerEmail(r *http.Request) string {
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		return claims.Email
	}
	return ""
}
