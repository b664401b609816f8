package providers

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"google.golang.org/api/option"
)

const firebaseAnonymousProvider = "anonymous"

var _ AuthProvider = &FirebaseAuthProvider{}

// idTokenVerifier is the part of the Firebase Auth client used to check
// player ID tokens.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthProvider accepts ID tokens from players signed in through
// Firebase and maps them to player identities.
type FirebaseAuthProvider struct {
	verifier     idTokenVerifier
	checkRevoked bool
}

type NewFirebaseAuthProviderOptions struct {
	ProjectID string
	APIKey    string
	// CheckRevoked also rejects tokens whose sessions were revoked. It costs
	// a round trip to Firebase on every verification.
	CheckRevoked bool
}

func NewFirebaseAuthProvider(ctx context.Context, opts NewFirebaseAuthProviderOptions) (*FirebaseAuthProvider, error) {
	if opts.ProjectID == "" {
		return nil, fmt.Errorf("firebase project id is required")
	}
	var clientOpts []option.ClientOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: opts.ProjectID}, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get firebase auth client: %w", err)
	}

	return &FirebaseAuthProvider{
		verifier:     client,
		checkRevoked: opts.CheckRevoked,
	}, nil
}

func (p *FirebaseAuthProvider) VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error) {
	verify := p.verifier.VerifyIDToken
	if p.checkRevoked {
		verify = p.verifier.VerifyIDTokenAndCheckRevoked
	}
	token, err := verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify firebase token: %w", err)
	}
	return claimsFromFirebaseToken(token), nil
}

// claimsFromFirebaseToken reads the player's identity out of a verified
// token. Guests signed in anonymously through Firebase carry no name.
func claimsFromFirebaseToken(token *auth.Token) *TokenClaims {
	claims := &TokenClaims{UID: token.UID}
	if name, ok := token.Claims["name"].(string); ok {
		claims.Name = name
	}
	if info, ok := token.Claims["firebase"].(map[string]interface{}); ok {
		claims.Anonymous = info["sign_in_provider"] == firebaseAnonymousProvider
	}
	return claims
}
