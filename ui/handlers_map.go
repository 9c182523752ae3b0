package ui

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"violens/adapters/geo"
	"violens/domain/table"
	"violens/internal/analytics"
)

// handleMap renders the choropleth page: per-state violation counts
// joined to the state boundary file, with the country file as the
// world overlay. Unmatched regions surface as their own metric card.
func (s *Server) handleMap(c *gin.Context) {
	rc := s.store.Snapshot()
	data := s.basePayload("map", rc)
	data["HasBoundaries"] = s.states != nil

	if s.states == nil || !rc.HasData() || rc.Empty() {
		s.renderTemplate(c, "map.html", data)
		return
	}

	byState, err := analytics.GroupBy(rc.Dataset, rc.Rows, table.ColLocation, table.ColFineAmount)
	if err != nil {
		s.logger.Error("map aggregation failed: %v", err)
		s.renderTemplate(c, "map.html", data)
		return
	}

	metrics := make([]geo.RegionMetric, len(byState.Groups))
	for i, g := range byState.Groups {
		metrics[i] = geo.RegionMetric{Region: g.Label, Count: g.Count, FineTotal: g.Sum}
	}
	join := s.states.Join(metrics)

	locations := make([]string, len(join.Regions))
	counts := make([]int, len(join.Regions))
	fines := make([]float64, len(join.Regions))
	hottest := geo.RegionMetric{}
	for i, r := range join.Regions {
		locations[i] = r.Region
		counts[i] = r.Count
		fines[i] = r.FineTotal
		if r.Count > hottest.Count {
			hottest = r
		}
	}

	data["StateGeoJSON"] = template.JS(s.states.RawJSON())
	data["FeatureKey"] = s.states.FeatureKey()
	data["MapChart"] = chartJSON(map[string]interface{}{
		"locations": locations,
		"counts":    counts,
		"fines":     fines,
	})
	data["ActiveStates"] = len(join.Regions)
	data["HottestState"] = hottest.Region
	data["HottestCount"] = hottest.Count
	data["Unmatched"] = join.Unmatched.Count
	data["MatchRate"] = join.MatchRate

	if s.world != nil {
		data["WorldGeoJSON"] = template.JS(s.world.RawJSON())
		data["WorldFeatureKey"] = s.world.FeatureKey()
		data["WorldChart"] = chartJSON(map[string]interface{}{
			"locations": []string{"India"},
			"counts":    []int{len(rc.Rows)},
		})
		data["HasWorld"] = true
	}
	s.renderTemplate(c, "map.html", data)
}
