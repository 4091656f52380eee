package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"notes-backend/middleware"
	"notes-backend/models"
	"notes-backend/store"
)

const maxBodyBytes = 10 << 20

type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type NoteStore interface {
	List(ctx context.Context, ownerID int64, params store.ListParams) ([]models.Note, error)
	Create(ctx context.Context, ownerID int64, title, content string) (*models.Note, error)
	Get(ctx context.Context, ownerID, noteID int64) (*models.Note, error)
	Update(ctx context.Context, ownerID, noteID int64, upd models.NoteUpdate) (*models.Note, error)
	Delete(ctx context.Context, ownerID, noteID int64) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
}

type Handler struct {
	users    UserStore
	notes    NoteStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	validate *validator.Validate

	// dummyHash is compared against when the email is unknown so that a
	// failed login costs the same either way.
	dummyHash string
}

func New(users UserStore, notes NoteStore, hasher PasswordHasher, tokens TokenIssuer) (*Handler, error) {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, err
	}
	return &Handler{
		users:     users,
		notes:     notes,
		hasher:    hasher,
		tokens:    tokens,
		validate:  newValidator(),
		dummyHash: dummy,
	}, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it.
func (h *Handler) decode(r *http.Request, w http.ResponseWriter, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return (&models.ValidationError{}).Add("invalid JSON body", "body")
	}
	return h.check(dst)
}

func (h *Handler) check(v any) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &models.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fieldMessage(fe), "body", fe.Field())
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		return fmt.Sprintf("ensure this value has at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("ensure this value has at most %s characters", fe.Param())
	default:
		return "invalid value"
	}
}

// writeError maps domain errors onto responses. Anything unrecognised is
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		middleware.WriteJSON(w, http.StatusUnprocessableEntity, middleware.Detail{Detail: verr.Fields})
	case errors.Is(err, models.ErrUnauthenticated):
		middleware.Unauthorized(w)
	case errors.Is(err, models.ErrNotFound):
		middleware.WriteJSON(w, http.StatusNotFound, middleware.Detail{Detail: "Note not found"})
	case errors.Is(err, models.ErrConflict):
		middleware.WriteJSON(w, http.StatusConflict, middleware.Detail{Detail: "Email already registered"})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
		middleware.WriteJSON(w, http.StatusInternalServerError, middleware.Detail{Detail: "Internal server error"})
	}
}

// currentUser returns the user put in the context by middleware.RequireAuth.
func currentUser(r *http.Request) (*models.User, error) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return nil, models.ErrUnauthenticated
	}
	return user, nil
}
