package ui

import (
	"github.com/gin-gonic/gin"
)

// Page is one entry in the flat navigation: a stable slug, a display
// title, and the handler that renders it. Exactly one page is active
// per request.
type Page struct {
	Slug   string
	Title  string
	Icon   string
	Render gin.HandlerFunc
}

// pageRegistry builds the ordered page list. Navigation order is fixed
// at startup; handlers are bound to the server instance.
func (s *Server) pageRegistry() []Page {
	return []Page{
		{Slug: "", Title: "Home", Icon: "🏠", Render: s.handleHome},
		{Slug: "dashboard", Title: "Dashboard", Icon: "📊", Render: s.handleDashboard},
		{Slug: "time-trend", Title: "Time Trend Analysis", Icon: "📈", Render: s.handleTimeTrend},
		{Slug: "environment", Title: "Environment Analysis", Icon: "🌦️", Render: s.handleEnvironment},
		{Slug: "vehicle", Title: "Vehicle Analysis", Icon: "🚗", Render: s.handleVehicle},
		{Slug: "driver", Title: "Driver Behaviour Analysis", Icon: "🧍", Render: s.handleDriver},
		{Slug: "payment", Title: "Payment Analysis", Icon: "💳", Render: s.handlePayment},
		{Slug: "map", Title: "Map Visualisation", Icon: "🗺️", Render: s.handleMap},
		{Slug: "report", Title: "Report", Icon: "📄", Render: s.handleReport},
		{Slug: "about", Title: "About", Icon: "ℹ️", Render: s.handleAbout},
	}
}

// navEntry is the nav fragment's view of a page.
type navEntry struct {
	Slug   string
	Title  string
	Icon   string
	Href   string
	Active bool
}

func (s *Server) navEntries(active string) []navEntry {
	entries := make([]navEntry, 0, len(s.pages))
	for _, p := range s.pages {
		entries = append(entries, navEntry{
			Slug:   p.Slug,
			Title:  p.Title,
			Icon:   p.Icon,
			Href:   "/" + p.Slug,
			Active: p.Slug == active,
		})
	}
	return entries
}
