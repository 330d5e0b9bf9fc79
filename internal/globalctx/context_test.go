package globalctx_test

import (
	"context"
	"sync"
	"testing"

	"github.com/omarluq/apimgr-sidecar/internal/globalctx"
	"github.com/omarluq/apimgr-sidecar/internal/serverconfig"
)

type fakeTokenSource struct{ token string }

func (f fakeTokenSource) Token(_ context.Context) (string, error) { return f.token, nil }

func testRuntime() serverconfig.RuntimeConfig {
	return serverconfig.NewRuntime(&serverconfig.Config{
		Rollout: serverconfig.RolloutConfig{
			ServiceName:       "echo.endpoints.test.cloud.goog",
			BootstrapConfigID: "2026-08-03r0",
			Strategy:          serverconfig.StrategyManaged,
		},
	})
}

func TestGlobalContextFixedFields(t *testing.T) {
	t.Parallel()

	g := globalctx.New(testRuntime(), fakeTokenSource{token: "t"})

	if g.ServiceName() != "echo.endpoints.test.cloud.goog" {
		t.Errorf("ServiceName() = %q", g.ServiceName())
	}
	if g.BootstrapConfigID() != "2026-08-03r0" {
		t.Errorf("BootstrapConfigID() = %q", g.BootstrapConfigID())
	}
}

func TestGlobalContextRolloutIDDefaultsEmpty(t *testing.T) {
	t.Parallel()

	g := globalctx.New(testRuntime(), fakeTokenSource{token: "t"})
	if g.RolloutID() != "" {
		t.Errorf("expected empty RolloutID before any observation, got %q", g.RolloutID())
	}
}

func TestGlobalContextSetRolloutIDPublishesImmediately(t *testing.T) {
	t.Parallel()

	g := globalctx.New(testRuntime(), fakeTokenSource{token: "t"})
	g.SetRolloutID("2026-08-03r5")
	if got := g.RolloutID(); got != "2026-08-03r5" {
		t.Errorf("RolloutID() = %q, want 2026-08-03r5", got)
	}
}

func TestGlobalContextRolloutIDConcurrentAccess(t *testing.T) {
	t.Parallel()

	g := globalctx.New(testRuntime(), fakeTokenSource{token: "t"})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = g.RolloutID()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			g.SetRolloutID("r")
		}
	}()
	wg.Wait()
}

func TestGlobalContextAuthToken(t *testing.T) {
	t.Parallel()

	g := globalctx.New(testRuntime(), fakeTokenSource{token: "bearer-value"})
	token, err := g.AuthToken(context.Background())
	if err != nil {
		t.Fatalf("AuthToken failed: %v", err)
	}
	if token != "bearer-value" {
		t.Errorf("AuthToken() = %q, want bearer-value", token)
	}
}

func TestGlobalContextServerConfigReflectsRuntime(t *testing.T) {
	t.Parallel()

	runtime := testRuntime()
	g := globalctx.New(runtime, fakeTokenSource{token: "t"})

	if g.ServerConfig().Rollout.ServiceName != "echo.endpoints.test.cloud.goog" {
		t.Errorf("unexpected ServerConfig(): %+v", g.ServerConfig())
	}

	runtime.(*serverconfig.Runtime).Store(&serverconfig.Config{
		Rollout: serverconfig.RolloutConfig{ServiceName: "other.cloud.goog"},
	})

	if g.ServerConfig().Rollout.ServiceName != "other.cloud.goog" {
		t.Errorf("expected ServerConfig() to observe hot-reload, got %+v", g.ServerConfig())
	}
}
