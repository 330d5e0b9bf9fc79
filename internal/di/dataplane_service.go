package di

import (
	"github.com/samber/do/v2"

	"github.com/omarluq/apimgr-sidecar/internal/dataplane"
)

// DataPlaneService wraps the minimal commit-callback consumer (spec.md
// §11.11): the atomically-swapped last-committed snapshot and the
// weighted selector reading it.
type DataPlaneService struct {
	State    *dataplane.State
	Selector *dataplane.Selector
}

// NewDataPlane builds an empty DataPlaneService; it holds no snapshot until
// the Configuration Manager's first commit.
func NewDataPlane(_ do.Injector) (*DataPlaneService, error) {
	state := dataplane.NewState()
	return &DataPlaneService{
		State:    state,
		Selector: dataplane.NewSelector(state),
	}, nil
}
