package rollout

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// TransportError wraps a failure to send the HTTP request at all (DNS,
// connection refused, timeout, context canceled before a response arrived).
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rollout: transport error calling %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError wraps a non-2xx response.
type HTTPStatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("rollout: %s returned status %d", e.Endpoint, e.StatusCode)
}

// ParseError wraps malformed JSON or a missing required field.
type ParseError struct {
	Endpoint string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rollout: failed to parse %s response: %s", e.Endpoint, e.Reason)
}

// ErrEmptyRollouts is returned when the rollouts listing contains no
// entries — there is nothing to apply.
var ErrEmptyRollouts = errors.New("rollout: rollouts array is empty")

// ErrMissingPercentages is returned when the active rollout element has no
// trafficPercentStrategy.percentages field.
var ErrMissingPercentages = errors.New("rollout: missing trafficPercentStrategy.percentages")

// PartialDownloadError aggregates the per-config_id failures from a fan-out
// config fetch where at least one download failed. The whole sequence is
// discarded when this is returned (spec.md §4.5 step 3e, §7).
type PartialDownloadError struct {
	Failed *multierror.Error
}

func (e *PartialDownloadError) Error() string {
	return fmt.Sprintf("rollout: partial download failure: %v", e.Failed)
}

func (e *PartialDownloadError) Unwrap() error { return e.Failed }

// NewPartialDownloadError builds a PartialDownloadError from per-config_id
// errors, tagging each with its config id for diagnosability.
func NewPartialDownloadError(failures map[string]error) *PartialDownloadError {
	var merr *multierror.Error
	for configID, err := range failures {
		merr = multierror.Append(merr, fmt.Errorf("config_id %s: %w", configID, err))
	}
	return &PartialDownloadError{Failed: merr}
}
