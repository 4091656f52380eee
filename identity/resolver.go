package identity

import (
	"context"
	"errors"
	"fmt"

	"notes-backend/models"
	"notes-backend/security"
)

type TokenValidator interface {
	Validate(token string) (*security.Claims, error)
}

type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Resolver maps a bearer token to an active user.
type Resolver struct {
	tokens TokenValidator
	users  UserLookup
}

func NewResolver(tokens TokenValidator, users UserLookup) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve returns models.ErrUnauthenticated for a bad token, an unknown
// subject, or an inactive account alike, so callers cannot tell them apart.
// Only storage failures come back as other errors.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, models.ErrUnauthenticated
	}
	claims, err := r.tokens.Validate(token)
	if err != nil {
		return nil, models.ErrUnauthenticated
	}
	if claims.Subject == "" {
		return nil, models.ErrUnauthenticated
	}

	user, err := r.users.GetByEmail(ctx, claims.Subject)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if !user.Active {
		return nil, models.ErrUnauthenticated
	}
	return user, nil
}
