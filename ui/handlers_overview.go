package ui

import (
	"html/template"
	"io/fs"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"

	"violens/domain/table"
	"violens/internal/analytics"
)

// handleHome renders the landing page: dataset summary, the schema
// inventory, and the upload form.
func (s *Server) handleHome(c *gin.Context) {
	rc := s.store.Snapshot()
	data := s.basePayload("", rc)

	if rc.HasData() {
		ds := rc.Dataset
		min, max := ds.TimeRange()
		data["Dropped"] = ds.Dropped()
		data["Columns"] = ds.Schema().Columns()
		data["DateMin"] = min.Format("2006-01-02")
		data["DateMax"] = max.Format("2006-01-02")
		data["LoadedAt"] = rc.LoadedAt.Format("2006-01-02 15:04:05")
	}
	s.renderTemplate(c, "home.html", data)
}

// handleDashboard renders the KPI cards and headline distributions.
func (s *Server) handleDashboard(c *gin.Context) {
	rc := s.store.Snapshot()
	data := s.basePayload("dashboard", rc)

	if rc.HasData() && !rc.Empty() {
		data["Summary"] = analytics.Summarize(rc.Dataset, rc.Rows)

		if byType, err := analytics.GroupBy(rc.Dataset, rc.Rows, table.ColViolationType, ""); err == nil {
			data["TypeChart"] = chartJSON(map[string]interface{}{
				"labels": byType.Labels(),
				"values": byType.Counts(),
			})
		}
		if byState, err := analytics.GroupBy(rc.Dataset, rc.Rows, table.ColLocation, ""); err == nil {
			top := byState.TopN(10)
			data["StateChart"] = chartJSON(map[string]interface{}{
				"labels": top.Labels(),
				"values": top.Counts(),
			})
		}
		hist := analytics.NumericHistogram(rc.Dataset, rc.Rows, table.ColFineAmount, 20)
		data["FineHistogram"] = chartJSON(map[string]interface{}{
			"labels": hist.Labels,
			"values": hist.Counts,
		})
	}
	s.renderTemplate(c, "dashboard.html", data)
}

// handleAbout renders the embedded markdown document.
func (s *Server) handleAbout(c *gin.Context) {
	rc := s.store.Snapshot()
	data := s.basePayload("about", rc)

	source, err := fs.ReadFile(embeddedFiles, "about.md")
	if err != nil {
		s.logger.Error("about document unavailable: %v", err)
		data["Content"] = template.HTML("<p>About document unavailable.</p>")
	} else {
		data["Content"] = template.HTML(markdown.ToHTML(source, nil, nil))
	}
	s.renderTemplate(c, "about.html", data)
}
