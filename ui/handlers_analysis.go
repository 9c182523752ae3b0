package ui

import (
	"math"

	"github.com/gin-gonic/gin"

	"violens/domain/table"
	"violens/internal/analytics"
)

// handleTimeTrend renders the monthly trend line plus the day-of-week
// and hour-bucket distributions.
func (s *Server) handleTimeTrend(c *gin.Context) {
	rc := s.store.Snapshot()
	data := s.basePayload("time-trend", rc)

	if rc.HasData() && !rc.Empty() {
		trend := analytics.MonthlyTrend(rc.Dataset, rc.Rows)
		data["TrendChart"] = chartJSON(map[string]interface{}{
			"labels": trend.Months(),
			"values": trend.Counts(),
			"fines":  trend.FineTotals(),
		})
		if byDay, err := analytics.GroupBy(rc.Dataset, rc.Rows, table.ColDayOfWeek, ""); err == nil {
			data["DayChart"] = chartJSON(map[string]interface{}{
				"labels": byDay.Labels(),
				"values": byDay.Counts(),
			})
		}
		if byHour, err := analytics.GroupBy(rc.Dataset, rc.Rows, table.ColHourBucket, ""); err == nil {
			data["HourChart"] = chartJSON(map[string]interface{}{
				"labels": byHour.Labels(),
				"values": byHour.Counts(),
			})
		}
	}
	s.renderTemplate(c, "timetrend.html", data)
}

// handleEnvironment renders the weather and road-condition breakdowns.
// Both depend on optional columns; the page explains itself when the
// dataset does not carry them.
func (s *Server) handleEnvironment(c *gin.Context) {
	rc := s.store.Snapshot()
	data := s.basePayload("environment", rc)

	if rc.HasData() && !rc.Empty() {
		schema := rc.Dataset.Schema()
		hasWeather := schema.Has(table.ColWeatherCondition)
		hasRoad := schema.Has(table.ColRoadCondition)
		data["HasWeather"] = hasWeather
		data["HasRoad"] = hasRoad

		if hasWeather {
			if pivot, err := analytics.Pivot(rc.Dataset, rc.Rows, table.ColWeatherCondition, table.ColViolationType); err == nil {
				data["WeatherPivot"] = pivot
				data["WeatherPivotChart"] = chartJSON(map[string]interface{}{
					"rows":  pivot.RowLabels,
					"cols":  pivot.ColLabels,
					"cells": pivot.Cells,
				})
			}
		}
		if hasRoad {
			if byRoad, err := analytics.GroupBy(rc.Dataset, rc.Rows, table.ColRoadCondition, ""); err == nil {
				data["RoadChart"] = chartJSON(map[string]interface{}{
					"labels": byRoad.Labels(),
					"values": byRoad.Counts(),
				})
			}
		}
	}
	s.renderTemplate(c, "environment.html", data)
}

// handleVehicle renders vehicle-type distributions and the share of
// speed-limit violations where speed columns exist.
func (s *Server) handleVehicle(c *gin.Context) {
	rc := s.store.Snapshot()
	data := s.basePayload("vehicle", rc)

	if rc.HasData() && !rc.Empty() {
		if byVehicle, err := analytics.GroupBy(rc.Dataset, rc.Rows, table.ColVehicleType, table.ColFineAmount); err == nil {
			data["VehicleChart"] = chartJSON(map[string]interface{}{
				"labels": byVehicle.Labels(),
				"values": byVehicle.Counts(),
			})
			data["VehicleFineChart"] = chartJSON(map[string]interface{}{
				"labels": byVehicle.Labels(),
				"values": byVehicle.Means(),
			})
			data["VehicleGroups"] = byVehicle.Groups
		}
		if share, ok := analytics.SpeedingShare(rc.Dataset, rc.Rows); ok {
			data["SpeedingShare"] = share
			data["HasSpeeding"] = true
		}
	}
	s.renderTemplate(c, "vehicle.html", data)
}

// handleDriver renders age and gender distributions, the repeat
// offender share, and the numeric correlation heatmap.
func (s *Server) handleDriver(c *gin.Context) {
	rc := s.store.Snapshot()
	data := s.basePayload("driver", rc)

	if rc.HasData() && !rc.Empty() {
		if byAge, err := analytics.GroupBy(rc.Dataset, rc.Rows, table.ColAgeBucket, ""); err == nil {
			data["AgeChart"] = chartJSON(map[string]interface{}{
				"labels": byAge.Labels(),
				"values": byAge.Counts(),
			})
		}
		if byGender, err := analytics.GroupBy(rc.Dataset, rc.Rows, table.ColDriverGender, ""); err == nil {
			data["GenderChart"] = chartJSON(map[string]interface{}{
				"labels": byGender.Labels(),
				"values": byGender.Counts(),
			})
		}
		if share, ok := analytics.RepeatOffenderShare(rc.Dataset, rc.Rows); ok {
			data["RepeatShare"] = share
			data["HasRepeat"] = true
		}

		matrix := analytics.Correlations(rc.Dataset, rc.Rows)
		if len(matrix.Columns) >= 2 {
			data["CorrelationChart"] = chartJSON(map[string]interface{}{
				"columns": matrix.Columns,
				"r":       sanitizeMatrix(matrix.R),
				"p":       sanitizeMatrix(matrix.P),
			})
			data["HasCorrelation"] = true
		}
	}
	s.renderTemplate(c, "driver.html", data)
}

// handlePayment renders payment-status and revenue breakdowns.
func (s *Server) handlePayment(c *gin.Context) {
	rc := s.store.Snapshot()
	data := s.basePayload("payment", rc)

	if rc.HasData() && !rc.Empty() {
		byStatus, err := analytics.GroupBy(rc.Dataset, rc.Rows, table.ColPaymentStatus, table.ColFineAmount)
		if err == nil {
			data["StatusChart"] = chartJSON(map[string]interface{}{
				"labels": byStatus.Labels(),
				"values": byStatus.Counts(),
			})

			var collected, total float64
			for _, g := range byStatus.Groups {
				total += g.Sum
				if g.Label == "Paid" {
					collected += g.Sum
				}
			}
			data["Collected"] = collected
			data["Outstanding"] = total - collected
			data["RevenueTotal"] = total
		}
		if byState, err := analytics.GroupBy(rc.Dataset, rc.Rows, table.ColLocation, table.ColFineAmount); err == nil {
			top := byState.TopN(10)
			data["RevenueChart"] = chartJSON(map[string]interface{}{
				"labels": top.Labels(),
				"values": top.Sums(),
			})
		}
	}
	s.renderTemplate(c, "payment.html", data)
}

// sanitizeMatrix replaces NaN with nil so the payload stays valid JSON.
func sanitizeMatrix(m [][]float64) [][]interface{} {
	out := make([][]interface{}, len(m))
	for i, row := range m {
		out[i] = make([]interface{}, len(row))
		for j, v := range row {
			if math.IsNaN(v) {
				out[i][j] = nil
			} else {
				out[i][j] = v
			}
		}
	}
	return out
}
