package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog"

	"pickem-tracker/internal/models"
	"pickem-tracker/internal/scoring"
)

var templateFuncs = template.FuncMap{
	"percent": func(v float64) string {
		return fmt.Sprintf("%.2f%%", v)
	},
	"barClass": func(e models.ScoreboardEntry) string {
		switch {
		case e.Highlighted:
			return "highlighted"
		case e.Eliminated:
			return "eliminated"
		default:
			return "normal"
		}
	},
	"rowClass": func(e models.ScoreboardEntry) string {
		switch {
		case e.Eliminated:
			return "eliminated"
		case e.Highlighted:
			return "highlighted"
		default:
			return ""
		}
	},
}

// PageData données du gabarit index.html
type PageData struct {
	Title          string
	Subtitle       template.HTML
	Names          []string
	Selected       string
	View           *models.ParticipantView
	Loaded         bool
	LastUpdated    string
	Error          string
	CategoryCSS    template.CSS
	RefreshSeconds int
}

// RenderMarkdown convertit le sous-titre Markdown en HTML ; le HTML brut
// de la source est ignoré
func RenderMarkdown(source string) template.HTML {
	if strings.TrimSpace(source) == "" {
		return ""
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank | mdhtml.SkipHTML,
	})
	return template.HTML(markdown.ToHTML([]byte(source), p, renderer))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := PageData{
		Title:          s.page.Title,
		Subtitle:       s.subtitle,
		Selected:       strings.TrimSpace(r.URL.Query().Get("name")),
		RefreshSeconds: int(s.page.RefreshInterval / time.Second),
	}

	status := s.board.Status()
	data.Error = status.LastError
	if status.Loaded {
		data.LastUpdated = status.LoadedAt.Local().Format(time.Kitchen)
	}

	if ds, err := s.board.Dataset(); err == nil {
		data.Loaded = true
		data.Names = scoring.SortedNames(ds)

		if data.Selected != "" {
			view, err := scoring.BuildParticipantView(ds, data.Selected, s.styler)
			if err == nil {
				data.View = view
			}
		}
	}

	// Après BuildParticipantView : les classes de catégories sont attribuées
	data.CategoryCSS = template.CSS(s.styler.Stylesheet())

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Erreur rendu gabarit")
		http.Error(w, "Erreur interne", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
