package ui

import (
	"time"

	"github.com/gin-gonic/gin"

	apperrors "violens/internal/errors"
)

func uploadTooLarge(filename string, limitMB int) error {
	return apperrors.LoadErrorf("%s exceeds the %d MB upload limit", filename, limitMB)
}

// handleSetFilters applies the filter form. Date bounds are clamped to
// the dataset range by the store; malformed dates are treated as unset.
// A multi-select that submits nothing clears its constraint.
func (s *Server) handleSetFilters(c *gin.Context) {
	from := parseFormDate(c.PostForm("date_from"))
	to := parseFormDate(c.PostForm("date_to"))
	s.store.SetDateRange(from, to)

	s.store.SetStates(normalizeSelection(c.PostFormArray("states")))
	s.store.SetVehicleTypes(normalizeSelection(c.PostFormArray("vehicle_types")))
	s.store.SetViolationTypes(normalizeSelection(c.PostFormArray("violation_types")))

	c.Redirect(303, returnPath(c))
}

// handleResetFilters clears every constraint.
func (s *Server) handleResetFilters(c *gin.Context) {
	s.store.ResetFilters()
	c.Redirect(303, returnPath(c))
}

// handleUpload replaces the session dataset from an uploaded CSV/XLSX
// file. A failed load keeps the current dataset and records the error.
func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile("datafile")
	if err != nil {
		s.logger.Warn("upload without file: %v", err)
		c.Redirect(303, "/")
		return
	}
	if header.Size > int64(s.cfg.MaxUploadMB)<<20 {
		s.store.SetLoadError(uploadTooLarge(header.Filename, s.cfg.MaxUploadMB))
		c.Redirect(303, "/")
		return
	}

	file, err := header.Open()
	if err != nil {
		s.store.SetLoadError(err)
		c.Redirect(303, "/")
		return
	}
	defer file.Close()

	ds, err := s.loader.LoadReader(file, header.Filename)
	if err != nil {
		s.store.SetLoadError(err)
		c.Redirect(303, "/")
		return
	}
	s.store.ReplaceDataset(ds)
	c.Redirect(303, "/")
}

func parseFormDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// normalizeSelection maps "nothing submitted" to nil, which clears the
// constraint rather than matching zero rows.
func normalizeSelection(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}

func returnPath(c *gin.Context) string {
	if ret := c.PostForm("return"); ret != "" && ret[0] == '/' {
		return ret
	}
	return "/dashboard"
}
