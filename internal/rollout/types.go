// Package rollout implements the Configuration Manager's two outbound
// fetchers: the rollout fetcher (C3) and the config fetcher (C4). It treats
// service configs as opaque byte blobs — parsing the service config
// protobuf itself is out of scope.
package rollout

// PercentageEntry pairs a config id with its traffic percentage. A slice
// instead of a map because the callback order the applier exposes (spec.md
// §4.5 step 3d) must match the document order of the backend's JSON
// response, and Go maps do not preserve insertion order.
type PercentageEntry struct {
	ConfigID string
	Percent  int
}

// Rollout is the decoded shape of a single entry from the rollouts listing
// endpoint: a rollout id and the ordered config_id -> percent mapping from
// trafficPercentStrategy.percentages.
type Rollout struct {
	RolloutID   string
	Percentages []PercentageEntry
}

// Sum returns the sum of all percentages in the rollout, as received from
// the backend with no normalization applied.
func (r Rollout) Sum() int {
	total := 0
	for _, p := range r.Percentages {
		total += p.Percent
	}
	return total
}

// ConfigIDs returns the config ids in document order.
func (r Rollout) ConfigIDs() []string {
	ids := make([]string, len(r.Percentages))
	for i, p := range r.Percentages {
		ids[i] = p.ConfigID
	}
	return ids
}

// WeightedConfig is a committed (blob, percent) pair, the unit the commit
// callback and the data-plane selector both consume.
type WeightedConfig struct {
	ConfigID string
	Blob     []byte
	Percent  int
}
