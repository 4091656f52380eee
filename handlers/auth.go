package handlers

import (
	"errors"
	"net/http"
	"strings"

	"notes-backend/middleware"
	"notes-backend/models"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decode(r, w, &req); err != nil {
		writeError(w, r, err)
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.Create(r.Context(), req.Email, hash)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, user.Out())
}

// Login accepts a JSON body or an OAuth2 password form (username, password).
// Unknown email, wrong password and inactive account all get the same reply.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := h.loginRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		writeError(w, r, err)
		return
	}
	if user == nil {
		h.hasher.Verify(req.Password, h.dummyHash)
		invalidCredentials(w)
		return
	}
	if !h.hasher.Verify(req.Password, user.PasswordHash) || !user.Active {
		invalidCredentials(w)
		return
	}

	token, err := h.tokens.Issue(user.Email, 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, models.Token{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) loginRequest(w http.ResponseWriter, r *http.Request) (loginRequest, error) {
	var req loginRequest
	ct := r.Header.Get("Content-Type")
	multipart := strings.HasPrefix(ct, "multipart/form-data")
	if multipart || strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var err error
		if multipart {
			err = r.ParseMultipartForm(maxBodyBytes)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return req, (&models.ValidationError{}).Add("invalid form body", "body")
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		return req, h.check(&req)
	}
	return req, h.decode(r, w, &req)
}

func invalidCredentials(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	middleware.WriteJSON(w, http.StatusUnauthorized, middleware.Detail{Detail: "Incorrect email or password"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, user.Out())
}

// DeleteMe removes the caller's account together with all of their notes.
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.users.Delete(r.Context(), user.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			err = models.ErrUnauthenticated
		}
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
