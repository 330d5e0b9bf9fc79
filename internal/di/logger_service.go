package di

import (
	"github.com/rs/zerolog"
	"github.com/samber/do/v2"

	"github.com/omarluq/apimgr-sidecar/internal/cmlog"
)

// LoggerService wraps the shared structured logger for DI.
type LoggerService struct {
	Logger *zerolog.Logger
}

// NewLogger builds the sidecar's logger from the loaded server config.
func NewLogger(i do.Injector) (*LoggerService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	return &LoggerService{Logger: cmlog.New(cfgSvc.Get().Logging)}, nil
}
