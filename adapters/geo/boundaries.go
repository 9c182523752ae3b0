package geo

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"violens/internal"
	apperrors "violens/internal/errors"
)

// UnmatchedBucket collects metrics whose region name has no boundary
// polygon. It is always reported, never silently discarded.
const UnmatchedBucket = "Unmatched"

// Feature is one GeoJSON feature. Geometry is kept opaque; only the
// name property is interpreted server-side.
type Feature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   json.RawMessage        `json:"geometry"`
}

// FeatureCollection is the top-level GeoJSON document.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Properties that hold the region name, tried in order. Indian state
// files use ST_NM, world files use name/ADMIN.
var namePropertyCandidates = []string{"ST_NM", "st_nm", "NAME_1", "name", "NAME", "ADMIN", "admin"}

// BoundarySet is a loaded boundary file with a normalized name index
// for joining dataset region labels to polygons.
type BoundarySet struct {
	label   string
	raw     []byte
	nameKey string
	names   map[string]string

	logger *internal.Logger
}

// LoadBoundaries reads and indexes a GeoJSON boundary file.
func LoadBoundaries(path, label string) (*BoundarySet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.WithCode(apperrors.CodeLoadError, err),
			"failed to read boundary file %s", path)
	}
	return ParseBoundaries(raw, label)
}

// ParseBoundaries indexes an in-memory GeoJSON document.
func ParseBoundaries(raw []byte, label string) (*BoundarySet, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, apperrors.Wrapf(apperrors.WithCode(apperrors.CodeLoadError, err),
			"boundary file %s is not valid GeoJSON", label)
	}
	if len(fc.Features) == 0 {
		return nil, apperrors.LoadErrorf("boundary file %s has no features", label)
	}

	nameKey := detectNameKey(fc.Features)
	if nameKey == "" {
		return nil, apperrors.LoadErrorf("boundary file %s has no recognizable name property", label)
	}

	names := make(map[string]string, len(fc.Features))
	for _, feature := range fc.Features {
		canonical, ok := feature.Properties[nameKey].(string)
		if !ok || canonical == "" {
			continue
		}
		names[normalizeRegion(canonical)] = canonical
	}

	return &BoundarySet{
		label:   label,
		raw:     raw,
		nameKey: nameKey,
		names:   names,
		logger:  internal.NewLogger("Geo"),
	}, nil
}

func detectNameKey(features []Feature) string {
	for _, candidate := range namePropertyCandidates {
		if _, ok := features[0].Properties[candidate]; ok {
			return candidate
		}
	}
	return ""
}

// normalizeRegion is the join key transform: trim then case-fold.
func normalizeRegion(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Label returns the set's display label ("states", "world").
func (b *BoundarySet) Label() string { return b.label }

// RawJSON returns the original GeoJSON bytes for client-side rendering.
func (b *BoundarySet) RawJSON() []byte { return b.raw }

// FeatureKey returns the property path the map layer keys polygons by.
func (b *BoundarySet) FeatureKey() string { return "properties." + b.nameKey }

// RegionNames returns the canonical region names, sorted.
func (b *BoundarySet) RegionNames() []string {
	out := make([]string, 0, len(b.names))
	for _, canonical := range b.names {
		out = append(out, canonical)
	}
	sort.Strings(out)
	return out
}

// Match resolves a dataset region label to its canonical boundary name.
func (b *BoundarySet) Match(region string) (string, bool) {
	canonical, ok := b.names[normalizeRegion(region)]
	return canonical, ok
}

// RegionMetric carries per-region aggregates into and out of the join.
type RegionMetric struct {
	Region    string  `json:"region"`
	Count     int     `json:"count"`
	FineTotal float64 `json:"fine_total"`
}

// JoinResult is the outcome of matching dataset regions to boundaries.
// Regions holds matched metrics under canonical boundary names;
// Unmatched aggregates everything that found no polygon.
type JoinResult struct {
	Regions   []RegionMetric
	Unmatched RegionMetric
	MatchRate float64
}

// Join matches metrics to boundary polygons. Region labels that miss
// every polygon are folded into the Unmatched bucket and logged; the
// join itself never fails.
func (b *BoundarySet) Join(metrics []RegionMetric) JoinResult {
	matched := make(map[string]*RegionMetric, len(metrics))
	var order []string
	result := JoinResult{Unmatched: RegionMetric{Region: UnmatchedBucket}}

	total := 0
	matchedRows := 0
	for _, m := range metrics {
		total += m.Count
		canonical, ok := b.Match(m.Region)
		if !ok {
			err := apperrors.JoinMismatch("no boundary polygon for region " + m.Region)
			b.logger.Warn("%s: routed %d rows to %s bucket (%s)",
				b.label, m.Count, UnmatchedBucket, err.Error())
			result.Unmatched.Count += m.Count
			result.Unmatched.FineTotal += m.FineTotal
			continue
		}
		matchedRows += m.Count
		if existing, dup := matched[canonical]; dup {
			existing.Count += m.Count
			existing.FineTotal += m.FineTotal
			continue
		}
		matched[canonical] = &RegionMetric{Region: canonical, Count: m.Count, FineTotal: m.FineTotal}
		order = append(order, canonical)
	}

	sort.Strings(order)
	for _, name := range order {
		result.Regions = append(result.Regions, *matched[name])
	}
	if total > 0 {
		result.MatchRate = float64(matchedRows) / float64(total)
	}
	return result
}
