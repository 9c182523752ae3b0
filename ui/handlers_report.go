package ui

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"violens/domain/table"
	"violens/internal/analytics"
)

// handleReport renders the on-screen report tables and the download link.
func (s *Server) handleReport(c *gin.Context) {
	rc := s.store.Snapshot()
	data := s.basePayload("report", rc)

	if rc.HasData() && !rc.Empty() {
		data["Summary"] = analytics.Summarize(rc.Dataset, rc.Rows)
		if byState, err := analytics.GroupBy(rc.Dataset, rc.Rows, table.ColLocation, table.ColFineAmount); err == nil {
			data["StateGroups"] = byState.Groups
		}
		if byType, err := analytics.GroupBy(rc.Dataset, rc.Rows, table.ColViolationType, table.ColFineAmount); err == nil {
			data["TypeGroups"] = byType.Groups
		}
	}
	s.renderTemplate(c, "report.html", data)
}

// handleReportDownload streams the XLSX workbook for the current
// filtered snapshot.
func (s *Server) handleReportDownload(c *gin.Context) {
	rc := s.store.Snapshot()
	if !rc.HasData() {
		c.Redirect(303, "/report")
		return
	}

	workbook, err := s.reports.Build(rc)
	if err != nil {
		s.logger.Error("report build failed: %v", err)
		c.AbortWithStatusJSON(500, gin.H{"error": "report build failed"})
		return
	}
	defer workbook.Close()

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		s.logger.Error("report serialization failed: %v", err)
		c.AbortWithStatusJSON(500, gin.H{"error": "report serialization failed"})
		return
	}

	filename := fmt.Sprintf("traffic_violations_report_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
