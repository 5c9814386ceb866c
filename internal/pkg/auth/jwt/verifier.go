package jwt

import (
	"context"
	"fmt"

	"socialhub/internal/app/user"
)

// IdentityLoader resolves the current account record for a verified user id.
type IdentityLoader func(ctx context.Context, userID int64) (user.Identity, error)

// Verifier turns a presented access token into a verified identity.
type Verifier struct {
	secret string
	loader IdentityLoader
}

// NewVerifier returns a Verifier for tokens signed with secret. When loader is nil
// the identity is built from the token claims alone.
func NewVerifier(secret string, loader IdentityLoader) *Verifier {
	return &Verifier{secret: secret, loader: loader}
}

// Verify validates the token and resolves the owning identity.
func (v *Verifier) Verify(ctx context.Context, token string) (user.Identity, error) {
	payload, err := ParseToken(token, v.secret, TypeAccess)
	if err != nil {
		return user.Identity{}, err
	}

	userID, err := payload.UserID()
	if err != nil {
		return user.Identity{}, err
	}

	if v.loader == nil {
		return user.Identity{
			UserID:      userID,
			Email:       payload.Email,
			DisplayName: payload.DisplayName,
		}, nil
	}

	identity, err := v.loader(ctx, userID)
	if err != nil {
		return user.Identity{}, fmt.Errorf("load identity %d: %w", userID, err)
	}
	if !identity.Valid() {
		return user.Identity{}, fmt.Errorf("load identity %d: %w", userID, ErrInvalidSubject)
	}
	return identity, nil
}
