package ui

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"violens/adapters/geo"
	"violens/adapters/tabfile"
	"violens/internal"
	"violens/internal/config"
	"violens/internal/report"
	"violens/internal/session"
)

// Server is the dashboard web server: gin router, embedded templates,
// the session store, and the page registry.
type Server struct {
	router    *gin.Engine
	cfg       *config.Config
	store     *session.Store
	loader    *tabfile.Loader
	reports   *report.Builder
	states    *geo.BoundarySet
	world     *geo.BoundarySet
	templates *template.Template
	pages     []Page
	logger    *internal.Logger
}

// NewServer wires the server. Boundary sets may be nil; the map page
// degrades to a warning instead of failing startup.
func NewServer(cfg *config.Config, store *session.Store, loader *tabfile.Loader, states, world *geo.BoundarySet) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	s := &Server{
		router:  gin.Default(),
		cfg:     cfg,
		store:   store,
		loader:  loader,
		reports: report.NewBuilder(),
		states:  states,
		world:   world,
		logger:  internal.NewLogger("Server"),
	}

	if err := s.parseTemplates(); err != nil {
		return nil, err
	}
	s.pages = s.pageRegistry()
	s.setupRoutes()
	return s, nil
}

func (s *Server) parseTemplates() error {
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
		"money": func(v float64) string {
			return "₹" + formatThousands(v)
		},
		"num": func(v int) string {
			return formatThousands(float64(v))
		},
		"lower": strings.ToLower,
	}

	templatesFS, err := fs.Sub(embeddedFiles, "templates")
	if err != nil {
		return fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	files1, err := fs.Glob(templatesFS, "*.html")
	if err != nil {
		return fmt.Errorf("failed to glob templates: %w", err)
	}
	files2, err := fs.Glob(templatesFS, "**/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob nested templates: %w", err)
	}
	files := append(files1, files2...)

	s.templates = template.New("").Funcs(funcMap)
	for _, file := range files {
		content, err := fs.ReadFile(templatesFS, file)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", file, err)
		}
		if _, err := s.templates.New(file).Parse(string(content)); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", file, err)
		}
	}
	s.logger.Info("parsed %d templates", len(files))
	return nil
}

func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err == nil {
		s.router.StaticFS("/static", http.FS(staticFS))
	} else {
		s.logger.Warn("static assets unavailable: %v", err)
	}

	for _, page := range s.pages {
		s.router.GET("/"+page.Slug, page.Render)
	}

	s.router.POST("/filters", s.handleSetFilters)
	s.router.POST("/filters/reset", s.handleResetFilters)
	s.router.POST("/upload", s.handleUpload)
	s.router.GET("/report/download", s.handleReportDownload)
}

// Run starts the HTTP server on the configured port.
func (s *Server) Run() error {
	addr := ":" + s.cfg.Port
	s.logger.Info("listening on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// formatThousands renders 1234567.5 as "1,234,568".
func formatThousands(v float64) string {
	raw := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(raw, "-")
	if neg {
		raw = raw[1:]
	}
	var b strings.Builder
	for i, r := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
