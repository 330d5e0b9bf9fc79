package rollout

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

const rolloutsEndpoint = "rollouts"

// RolloutFetcher is component C3: it lists the successful rollouts for a
// service and decodes the active one (the first element of the rollouts
// array, per spec.md §12 supplement 3 — an assumption carried from the
// original implementation, not re-derived here).
type RolloutFetcher struct {
	doer        HTTPDoer
	tokens      TokenSource
	serviceName string
}

// NewRolloutFetcher builds a fetcher bound to one service name.
func NewRolloutFetcher(doer HTTPDoer, tokens TokenSource, serviceName string) *RolloutFetcher {
	return &RolloutFetcher{doer: doer, tokens: tokens, serviceName: serviceName}
}

// URL returns the rollouts listing endpoint for this fetcher's service,
// filtered to successful rollouts (spec.md §4.3).
func (f *RolloutFetcher) URL() string {
	return fmt.Sprintf(
		"https://servicemanagement.googleapis.com/v1/services/%s/rollouts?filter=status=SUCCESS",
		url.PathEscape(f.serviceName),
	)
}

// Fetch retrieves and decodes the active rollout. Every failure mode
// (transport, status, parse, empty list, missing percentages) returns a
// typed error and leaves the caller's state untouched — the applier is
// responsible for aborting the sequence on any error (spec.md §4.5 step 4).
func (f *RolloutFetcher) Fetch(ctx context.Context) (Rollout, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(), nil)
	if err != nil {
		return Rollout{}, &TransportError{Endpoint: rolloutsEndpoint, Err: err}
	}

	if f.tokens != nil {
		token, tokenErr := f.tokens.Token(ctx)
		if tokenErr != nil {
			return Rollout{}, &TransportError{Endpoint: rolloutsEndpoint, Err: tokenErr}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.doer.Do(ctx, rolloutsEndpoint, req)
	if err != nil {
		return Rollout{}, &TransportError{Endpoint: rolloutsEndpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Rollout{}, &TransportError{Endpoint: rolloutsEndpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Rollout{}, &HTTPStatusError{Endpoint: rolloutsEndpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return parseRolloutsResponse(body)
}

// parseRolloutsResponse decodes the rollouts[0] element, preserving the
// document order of trafficPercentStrategy.percentages via gjson.ForEach —
// a plain encoding/json map would not, which is what makes this field
// observable in the commit callback order (spec.md §4.5 step 3d).
func parseRolloutsResponse(body []byte) (Rollout, error) {
	if !gjson.ValidBytes(body) {
		return Rollout{}, &ParseError{Endpoint: rolloutsEndpoint, Reason: "invalid JSON"}
	}

	parsed := gjson.ParseBytes(body)
	rollouts := parsed.Get("rollouts")
	if !rollouts.Exists() || !rollouts.IsArray() || len(rollouts.Array()) == 0 {
		return Rollout{}, ErrEmptyRollouts
	}

	active := rollouts.Array()[0]

	rolloutID := active.Get("rolloutId")
	if !rolloutID.Exists() || rolloutID.String() == "" {
		return Rollout{}, &ParseError{Endpoint: rolloutsEndpoint, Reason: "missing rolloutId"}
	}

	percentages := active.Get("trafficPercentStrategy.percentages")
	if !percentages.Exists() || !percentages.IsObject() {
		return Rollout{}, ErrMissingPercentages
	}

	entries := make([]PercentageEntry, 0, len(percentages.Map()))
	var forEachErr error
	percentages.ForEach(func(key, value gjson.Result) bool {
		percent, err := percentAsInt(value)
		if err != nil {
			forEachErr = &ParseError{
				Endpoint: rolloutsEndpoint,
				Reason:   fmt.Sprintf("percentage for %s is not numeric: %v", key.String(), err),
			}
			return false
		}
		entries = append(entries, PercentageEntry{ConfigID: key.String(), Percent: percent})
		return true
	})
	if forEachErr != nil {
		return Rollout{}, forEachErr
	}
	if len(entries) == 0 {
		return Rollout{}, ErrMissingPercentages
	}

	return Rollout{RolloutID: rolloutID.String(), Percentages: entries}, nil
}

// percentAsInt accepts either a JSON number or a numeric string — the real
// service-management API emits percentages as strings.
func percentAsInt(v gjson.Result) (int, error) {
	switch v.Type {
	case gjson.Number:
		return int(v.Num), nil
	case gjson.String:
		n, err := strconv.Atoi(v.Str)
		if err != nil {
			return 0, err
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected JSON type %v", v.Type)
	}
}
