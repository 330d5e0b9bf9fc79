package globalctx

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/google"

	"github.com/omarluq/apimgr-sidecar/internal/serverconfig"
)

// cloudPlatformScope is the OAuth scope service-management calls require
// when no narrower scope is configured, mirroring the teacher's Vertex AI
// provider's default scope.
const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// TokenSource supplies the bearer token the Configuration Manager attaches
// to outbound requests. It satisfies rollout.TokenSource.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// staticTokenSource always returns the same preconfigured token, for local
// development and tests.
type staticTokenSource struct {
	token string
}

func (s staticTokenSource) Token(_ context.Context) (string, error) {
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

// ErrNoToken is returned when no authentication is configured at all.
var ErrNoToken = errors.New("globalctx: no outbound auth token configured")

// oauth2TokenSource adapts a golang.org/x/oauth2.TokenSource, caching the
// last token behind a mutex the way the teacher's VertexProvider does
// (internal/providers/vertex.go), since oauth2.TokenSource implementations
// are themselves expected to cache and refresh internally but are not
// guaranteed safe to call concurrently with no wrapper.
type oauth2TokenSource struct {
	source oauth2.TokenSource
	mu     sync.Mutex
}

func (s *oauth2TokenSource) Token(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.source.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// NewTokenSource builds a TokenSource from the server config's auth
// section. A static_token takes precedence when set; otherwise an
// oauth_client_id selects an OAuth2 client-credentials grant, and an
// oauth_scope alone selects Google Application Default Credentials scoped
// to that scope. With none of static_token, oauth_client_id and
// oauth_scope set it returns ErrNoToken.
func NewTokenSource(ctx context.Context, cfg serverconfig.OutboundAuthConfig) (TokenSource, error) {
	if cfg.StaticToken != "" {
		return staticTokenSource{token: cfg.StaticToken}, nil
	}

	if cfg.OAuthScope == "" && cfg.ClientID == "" {
		return nil, ErrNoToken
	}

	if cfg.ClientID != "" {
		ccCfg := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       []string{cfg.OAuthScope},
		}
		return &oauth2TokenSource{source: ccCfg.TokenSource(ctx)}, nil
	}

	scope := cfg.OAuthScope
	if scope == "" {
		scope = cloudPlatformScope
	}

	creds, err := google.FindDefaultCredentials(ctx, scope)
	if err != nil {
		return nil, err
	}

	return &oauth2TokenSource{source: creds.TokenSource}, nil
}
