package auth

import (
	"context"
	"net/http"

	"NimbusChat/service/storage"
	"NimbusChat/tools/errs"
	"NimbusChat/tools/security"
)

// CookieName carries the session token between the HTTP surface and the
// WebSocket upgrade.
const CookieName = "chat_auth"

// Identity is the result of a successful token validation.
type Identity struct {
	Username string
	TokenID  string
}

// Validator checks a token's signature, claims, and revocation status. It is
// the gateway's auth gate: a failure here refuses the connection.
type Validator struct {
	opts    security.Options
	revoked *storage.RevokedStore
}

func NewValidator(opts security.Options, revoked *storage.RevokedStore) *Validator {
	return &Validator{opts: opts, revoked: revoked}
}

func (v *Validator) Validate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, errs.ErrAuthRejected.WithDetail("missing token")
	}
	claims, err := security.Verify(v.opts, token)
	if err != nil {
		return nil, errs.ErrAuthRejected.WithDetail(err.Error())
	}
	if v.revoked != nil {
		rv, err := v.revoked.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			// fail closed: an unreachable denylist refuses the connection
			return nil, errs.ErrAuthRejected.WithDetail(err.Error())
		}
		if rv {
			return nil, errs.ErrTokenRevoked
		}
	}
	return &Identity{Username: claims.Username, TokenID: claims.TokenID}, nil
}

// Authenticate reads the auth cookie off a request; it satisfies the gateway
// server's Authenticator.
func (v *Validator) Authenticate(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", errs.ErrAuthRejected.WithDetail("missing auth cookie")
	}
	id, err := v.Validate(r.Context(), cookie.Value)
	if err != nil {
		return "", err
	}
	return id.Username, nil
}
