package ui

import (
	"bytes"
	"encoding/json"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"

	"violens/domain/table"
	"violens/internal/session"
)

// renderTemplate executes a page template into a buffer first so a
// template failure becomes a 500 instead of a half-written response.
func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.logger.Error("template %s failed: %v", templateName, err)
		c.AbortWithStatusJSON(500, gin.H{"error": "template rendering failed"})
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(200)
	buf.WriteTo(c.Writer)
}

// basePayload carries everything the layout fragments need: nav
// entries, filter widget state, and the load/empty status banners.
func (s *Server) basePayload(active string, rc *session.RenderContext) map[string]interface{} {
	title := "Traffic Violations"
	for _, p := range s.pages {
		if p.Slug == active {
			title = p.Title
			break
		}
	}
	data := map[string]interface{}{
		"Nav":     s.navEntries(active),
		"Active":  active,
		"Title":   title,
		"HasData": rc.HasData(),
		"Empty":   rc.Empty(),
		"Rows":    len(rc.Rows),
	}
	if rc.LoadErr != nil {
		data["LoadErr"] = rc.LoadErr.Error()
	}
	if !rc.HasData() {
		return data
	}

	ds := rc.Dataset
	min, max := ds.TimeRange()
	data["DatasetName"] = ds.Name()
	data["TotalRows"] = ds.Rows()
	data["Filters"] = newFilterView(rc.Filters, min, max)
	data["FilterOptions"] = map[string]interface{}{
		"States":         ds.DistinctLabels(table.ColLocation),
		"VehicleTypes":   ds.DistinctLabels(table.ColVehicleType),
		"ViolationTypes": ds.DistinctLabels(table.ColViolationType),
		"MinDate":        min.Format("2006-01-02"),
		"MaxDate":        max.Format("2006-01-02"),
	}
	return data
}

// filterView is the template's view of the active selection. Unset
// date bounds display as the dataset's own range.
type filterView struct {
	DateFrom       string
	DateTo         string
	States         map[string]bool
	VehicleTypes   map[string]bool
	ViolationTypes map[string]bool
	Any            bool
}

func newFilterView(f table.FilterSelection, min, max time.Time) filterView {
	v := filterView{
		DateFrom:       min.Format("2006-01-02"),
		DateTo:         max.Format("2006-01-02"),
		States:         selectedSet(f.States),
		VehicleTypes:   selectedSet(f.VehicleTypes),
		ViolationTypes: selectedSet(f.ViolationTypes),
		Any:            !f.IsZero(),
	}
	if !f.DateFrom.IsZero() {
		v.DateFrom = f.DateFrom.Format("2006-01-02")
	}
	if !f.DateTo.IsZero() {
		v.DateTo = f.DateTo.Format("2006-01-02")
	}
	return v
}

func selectedSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// chartJSON marshals a chart payload for inline script embedding.
// Marshal failures degrade to null; the chart helper skips those.
func chartJSON(v interface{}) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return template.JS("null")
	}
	return template.JS(b)
}
