package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAnonymousTokenIssuer = "firefades"
	DefaultAnonymousTokenTTL    = 24 * time.Hour
)

var _ AuthProvider = &JWTAuthProvider{}

// JWTAuthProvider issues and verifies HMAC signed tokens for players who
// have not signed in. Each token carries a fresh user ID.
type JWTAuthProvider struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type NewJWTAuthProviderOptions struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

type anonymousClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func NewJWTAuthProvider(opts NewJWTAuthProviderOptions) (*JWTAuthProvider, error) {
	if len(opts.Secret) == 0 {
		return nil, fmt.Errorf("jwt secret is required")
	}
	issuer := opts.Issuer
	if issuer == "" {
		issuer = DefaultAnonymousTokenIssuer
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultAnonymousTokenTTL
	}
	return &JWTAuthProvider{
		secret: opts.Secret,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// IssueAnonymousToken creates a token for a new anonymous user.
func (p *JWTAuthProvider) IssueAnonymousToken(name string) (string, *TokenClaims, error) {
	now := p.now()
	uid := uuid.New().String()
	claims := anonymousClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", nil, fmt.Errorf("error signing token: %v", err)
	}

	return signed, &TokenClaims{
		UID:       uid,
		Name:      name,
		Anonymous: true,
	}, nil
}

// VerifyToken verifies a token issued by IssueAnonymousToken
func (p *JWTAuthProvider) VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error) {
	claims := &anonymousClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("error verifying token: %v", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("error verifying token: missing subject")
	}

	return &TokenClaims{
		UID:       claims.Subject,
		Name:      claims.Name,
		Anonymous: true,
	}, nil
}
