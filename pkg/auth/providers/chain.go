package providers

import (
	"context"
	"errors"
	"fmt"
)

var _ AuthProvider = &ChainAuthProvider{}

// ChainAuthProvider accepts a token if any of its providers does, trying
// them in order.
type ChainAuthProvider struct {
	providers []AuthProvider
}

func NewChainAuthProvider(providers ...AuthProvider) *ChainAuthProvider {
	return &ChainAuthProvider{
		providers: providers,
	}
}

func (p *ChainAuthProvider) VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error) {
	if len(p.providers) == 0 {
		return nil, errors.New("no auth providers configured")
	}

	var errs []error
	for _, provider := range p.providers {
		claims, err := provider.VerifyToken(ctx, idToken)
		if err == nil {
			return claims, nil
		}
		errs = append(errs, err)
	}

	return nil, fmt.Errorf("token rejected by all providers: %w", errors.Join(errs...))
}
