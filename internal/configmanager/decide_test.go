package configmanager

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// decide's domain is small and finite (spec.md §9), so it is tested
// exhaustively over n in {0, 1} x obs in {"", current, other} x current in
// {"", some-id}, plus a property pass generating arbitrary strings to make
// sure no input outside that finite partition sneaks past the table.

func TestDecideExhaustive(t *testing.T) {
	t.Parallel()

	const current = "2026-08-03r1"
	const other = "2026-08-03r2"

	tests := []struct {
		name string
		n    int
		obs  string
		want Trigger
	}{
		{"idle sidecar always skips regardless of obs", 0, "", TriggerSkip},
		{"idle sidecar skips even with obs equal to current", 0, current, TriggerSkip},
		{"idle sidecar skips even with obs differing from current", 0, other, TriggerSkip},
		{"active sidecar, no observation yet, probes rollouts only", 1, "", TriggerRolloutsOnly},
		{"active sidecar, obs caught up to current, skip", 1, current, TriggerSkip},
		{"active sidecar, obs ahead of current, full fetch", 1, other, TriggerFull},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := decide(tc.n, tc.obs, current); got != tc.want {
				t.Errorf("decide(%d, %q, %q) = %v, want %v", tc.n, tc.obs, current, got, tc.want)
			}
		})
	}
}

func TestDecideProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("n == 0 always skips", prop.ForAll(
		func(obs, current string) bool {
			return decide(0, obs, current) == TriggerSkip
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("n > 0 and obs == current always skips (when obs non-empty)", prop.ForAll(
		func(n int, id string) bool {
			if id == "" {
				return true // covered by the empty-obs case below
			}
			return decide(n, id, id) == TriggerSkip
		},
		gen.IntRange(1, 1000),
		gen.AlphaString(),
	))

	properties.Property("n > 0 and obs differs non-emptily from current is always Full", prop.ForAll(
		func(n int, obs, current string) bool {
			if obs == "" || obs == current {
				return true
			}
			return decide(n, obs, current) == TriggerFull
		},
		gen.IntRange(1, 1000),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("n > 0 and obs empty is always RolloutsOnly", prop.ForAll(
		func(n int, current string) bool {
			return decide(n, "", current) == TriggerRolloutsOnly
		},
		gen.IntRange(1, 1000),
		gen.AlphaString(),
	))

	properties.Property("decide never returns anything but Skip, RolloutsOnly, or Full", prop.ForAll(
		func(n int, obs, current string) bool {
			got := decide(n, obs, current)
			return got == TriggerSkip || got == TriggerRolloutsOnly || got == TriggerFull
		},
		gen.IntRange(-10, 1000),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
