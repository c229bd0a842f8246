// Package handlers expose le tableau des scores en HTML et en JSON
package handlers

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"pickem-tracker/internal/board"
	"pickem-tracker/internal/database"
	"pickem-tracker/internal/middleware"
	"pickem-tracker/internal/models"
	"pickem-tracker/internal/styles"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Board accès au jeu de données publié
type Board interface {
	Dataset() (*models.Dataset, error)
	Current() *models.Snapshot
	Status() board.Status
	Reload(ctx context.Context) (*models.Snapshot, error)
	History(ctx context.Context, limit int) ([]database.ReloadRecord, error)
}

// PageConfig habillage de la page
type PageConfig struct {
	Title           string
	Subtitle        string // Markdown
	RefreshInterval time.Duration
}

// Dependencies collaborateurs du routeur
type Dependencies struct {
	Board     Board
	Styler    *styles.Styler
	WebSocket http.Handler                    // optionnel
	Admin     func(http.Handler) http.Handler // protège POST /api/reload
	Clients   func() int                      // optionnel, nombre de clients WebSocket
	Page      PageConfig
	Logger    *zerolog.Logger
}

// Server handlers HTTP
type Server struct {
	board     Board
	styler    *styles.Styler
	clients   func() int
	page      PageConfig
	subtitle  template.HTML
	templates *template.Template
	logger    *zerolog.Logger
}

// NewRouter construit le routeur chi de l'application
func NewRouter(deps Dependencies) (http.Handler, error) {
	logger := deps.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	styler := deps.Styler
	if styler == nil {
		styler = styles.New(styles.NewStore(), nil)
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		board:     deps.Board,
		styler:    styler,
		clients:   deps.Clients,
		page:      deps.Page,
		subtitle:  RenderMarkdown(deps.Page.Subtitle),
		templates: tmpl,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.SecurityHeaders)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/static/categories.css", s.handleCategoriesCSS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/names", s.handleNames)
		r.Get("/dataset", s.handleDataset)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/participants/{name}", s.handleParticipant)
		r.Get("/status", s.handleStatus)

		reload := http.Handler(http.HandlerFunc(s.handleReload))
		if deps.Admin != nil {
			reload = deps.Admin(reload)
		}
		r.Method(http.MethodPost, "/reload", reload)
	})

	if deps.WebSocket != nil {
		r.Method(http.MethodGet, "/ws", deps.WebSocket)
	}

	return r, nil
}
