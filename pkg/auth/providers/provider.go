package providers

import (
	"context"

	gametypes "github.com/cbodonnell/firefades/pkg/game/types"
)

type AuthProvider interface {
	VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error)
}

type TokenClaims struct {
	UID string `json:"uid"`
	// Name is the display name carried by the token, if any
	Name      string `json:"name,omitempty"`
	Anonymous bool   `json:"anonymous"`
}

// Identity returns the player identity the claims vouch for.
func (c *TokenClaims) Identity() gametypes.Identity {
	return gametypes.Identity{
		UserID:    c.UID,
		Nickname:  c.Name,
		Anonymous: c.Anonymous,
	}
}
