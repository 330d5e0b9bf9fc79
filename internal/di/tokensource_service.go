package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/omarluq/apimgr-sidecar/internal/globalctx"
)

// TokenSourceService wraps the bearer token source CM attaches to its own
// outbound requests (spec.md §4.2 auth_token(), §11.8).
type TokenSourceService struct {
	TokenSource globalctx.TokenSource
}

// NewTokenSource builds the token source from the auth section of server
// config.
func NewTokenSource(i do.Injector) (*TokenSourceService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)

	ts, err := globalctx.NewTokenSource(context.Background(), cfgSvc.Get().Auth)
	if err != nil {
		return nil, err
	}

	return &TokenSourceService{TokenSource: ts}, nil
}
