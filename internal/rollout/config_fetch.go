package rollout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/mo"

	"github.com/omarluq/apimgr-sidecar/internal/blobcache"
)

const configsEndpoint = "configs"

// configBlobTTL bounds how long a cached config blob is trusted before a
// fresh GET is issued again, even if nothing ever evicts it locally.
const configBlobTTL = 24 * time.Hour

// ConfigFetcher is component C4: it retrieves one opaque service config
// blob by id. The service config protobuf inside the blob is never parsed
// (spec.md §1 — CM treats configs as opaque bytes).
type ConfigFetcher struct {
	doer        HTTPDoer
	tokens      TokenSource
	cache       blobcache.Cache
	logger      *zerolog.Logger
	serviceName string
}

// NewConfigFetcher builds a fetcher bound to one service name. cache may be
// nil, in which case every fetch goes to the backend.
func NewConfigFetcher(doer HTTPDoer, tokens TokenSource, cache blobcache.Cache, logger *zerolog.Logger, serviceName string) *ConfigFetcher {
	return &ConfigFetcher{doer: doer, tokens: tokens, cache: cache, logger: logger, serviceName: serviceName}
}

// URL returns the single-config endpoint for configID (spec.md §4.4).
func (f *ConfigFetcher) URL(configID string) string {
	return fmt.Sprintf(
		"https://servicemanagement.googleapis.com/v1/services/%s/configs/%s",
		url.PathEscape(f.serviceName),
		url.PathEscape(configID),
	)
}

// cacheKey namespaces the blob cache by service so two services never
// collide over the same config id.
func (f *ConfigFetcher) cacheKey(configID string) string {
	return "rollout-config:" + f.serviceName + ":" + configID
}

// Fetch returns the opaque blob for configID. A cache hit produces zero
// outbound HTTP calls (spec.md §12 supplement, SPEC_FULL.md P7). A cache
// miss or cache error falls through to the backend and, on success, backs
// fills the cache for next time.
func (f *ConfigFetcher) Fetch(ctx context.Context, configID string) ([]byte, error) {
	if f.cache != nil {
		if blob, err := f.cache.Get(ctx, f.cacheKey(configID)); err == nil {
			return blob, nil
		} else if !errors.Is(err, blobcache.ErrNotFound) && f.logger != nil {
			f.logger.Warn().Err(err).Str("config_id", configID).Msg("config blob cache read failed, falling through to backend")
		}
	}

	blob, err := f.fetchFromBackend(ctx, configID)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		// SetIfAbsent, not SetWithTTL: the blob is immutable under this id
		// (spec.md §3), so if another goroutine already backfilled it first
		// there is nothing to overwrite.
		if _, err := f.cache.SetIfAbsent(ctx, f.cacheKey(configID), blob, configBlobTTL); err != nil && f.logger != nil {
			f.logger.Warn().Err(err).Str("config_id", configID).Msg("failed to backfill config blob cache")
		}
	}

	return blob, nil
}

func (f *ConfigFetcher) fetchFromBackend(ctx context.Context, configID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(configID), nil)
	if err != nil {
		return nil, &TransportError{Endpoint: configsEndpoint, Err: err}
	}

	if f.tokens != nil {
		token, tokenErr := f.tokens.Token(ctx)
		if tokenErr != nil {
			return nil, &TransportError{Endpoint: configsEndpoint, Err: tokenErr}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.doer.Do(ctx, configsEndpoint, req)
	if err != nil {
		return nil, &TransportError{Endpoint: configsEndpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: configsEndpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 404 is the common case here: the config has not finished
		// propagating yet. Treated identically to any other non-2xx —
		// the applier discards the whole sequence and retries next tick.
		return nil, &HTTPStatusError{Endpoint: configsEndpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// ConfigBlobFetcher is the subset of ConfigFetcher's surface FetchAll needs,
// letting callers substitute a test double without an import cycle back
// through configmanager.
type ConfigBlobFetcher interface {
	Fetch(ctx context.Context, configID string) ([]byte, error)
}

// FetchAll fans a config fetch out across distinct config ids and fans the
// results back into a scoreboard keyed by config id (spec.md §9's design
// notes, §4.5 step 3d/3e): mo.None[[]byte]() while a fetch is still in
// flight, mo.Some(blob) once it completes successfully. A failed fetch never
// occupies a scoreboard slot — it is recorded separately as a failure, so
// "did this id complete" and "did it succeed" stay two different questions
// rather than being conflated behind a single sentinel byte slice. It
// returns a PartialDownloadError naming every failed id if any fetch
// failed; on success the returned slice preserves the input order.
func FetchAll(ctx context.Context, fetcher ConfigBlobFetcher, entries []PercentageEntry) ([]WeightedConfig, error) {
	type result struct {
		index int
		blob  mo.Option[[]byte]
		err   error
	}

	results := make(chan result, len(entries))
	for i, entry := range entries {
		go func(i int, entry PercentageEntry) {
			blob, err := fetcher.Fetch(ctx, entry.ConfigID)
			if err != nil {
				results <- result{index: i, err: err}
				return
			}
			results <- result{index: i, blob: mo.Some(blob)}
		}(i, entry)
	}

	scoreboard := make([]mo.Option[[]byte], len(entries))
	failures := make(map[string]error)
	for range entries {
		r := <-results
		if r.err != nil {
			failures[entries[r.index].ConfigID] = r.err
			continue
		}
		scoreboard[r.index] = r.blob
	}

	if len(failures) > 0 {
		return nil, NewPartialDownloadError(failures)
	}

	committed := make([]WeightedConfig, len(entries))
	for i, entry := range entries {
		blob, _ := scoreboard[i].Get()
		committed[i] = WeightedConfig{ConfigID: entry.ConfigID, Blob: blob, Percent: entry.Percent}
	}
	return committed, nil
}
