package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickem-tracker/internal/board"
	"pickem-tracker/internal/database"
	apperrors "pickem-tracker/internal/errors"
	"pickem-tracker/internal/models"
	"pickem-tracker/internal/styles"
)

type fakeBoard struct {
	snap      *models.Snapshot
	status    board.Status
	reloadErr error
	reloads   int
}

func (f *fakeBoard) Dataset() (*models.Dataset, error) {
	if f.snap == nil {
		return nil, apperrors.ErrNoDataset
	}
	return f.snap.Dataset, nil
}

func (f *fakeBoard) Current() *models.Snapshot { return f.snap }

func (f *fakeBoard) Status() board.Status { return f.status }

func (f *fakeBoard) Reload(ctx context.Context) (*models.Snapshot, error) {
	f.reloads++
	return f.snap, f.reloadErr
}

func (f *fakeBoard) History(ctx context.Context, limit int) ([]database.ReloadRecord, error) {
	return []database.ReloadRecord{{Sequence: 1, Status: database.ReloadOK}}, nil
}

func loadedBoard() *fakeBoard {
	return &fakeBoard{
		snap: &models.Snapshot{
			Dataset: &models.Dataset{
				Entries: []models.ParticipantEntry{
					{Name: "Bob", Score: 4, Answers: map[string]string{"Q1": "Blue", "Q2": ""}},
					{Name: "Alice", Score: 10, TotalRemaining: 2, Answers: map[string]string{"Q1": "Red (10 Points)", "Q2": "Yes"}},
				},
				QuestionMap: map[string]models.QuestionInfo{
					"Q1": {Prompt: "What color?", Result: "Red", Category: "Colors"},
					"Q2": {Prompt: "Rain?", Category: "Weather"},
				},
				QuestionColumns: []string{"Q1", "Q2"},
			},
			LoadedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
			Sequence: 3,
		},
		status: board.Status{Loaded: true, Sequence: 3, LoadedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)},
	}
}

func newTestRouter(t *testing.T, b Board, admin func(http.Handler) http.Handler) http.Handler {
	t.Helper()
	router, err := NewRouter(Dependencies{
		Board:   b,
		Styler:  styles.New(styles.NewStore(), nil),
		Admin:   admin,
		Clients: func() int { return 2 },
		Page:    PageConfig{Title: "Office Pool", Subtitle: "Season **2026**", RefreshInterval: time.Minute},
	})
	require.NoError(t, err)
	return router
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestNames(t *testing.T) {
	router := newTestRouter(t, loadedBoard(), nil)

	rec := do(t, router, http.MethodGet, "/api/names")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]string
	decode(t, rec, &body)
	assert.Equal(t, []string{"Alice", "Bob"}, body["names"])
}

func TestNoDatasetYet(t *testing.T) {
	router := newTestRouter(t, &fakeBoard{}, nil)

	for _, path := range []string{"/api/names", "/api/dataset", "/api/leaderboard", "/api/participants/Alice"} {
		rec := do(t, router, http.MethodGet, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}

	rec := do(t, router, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Loading data...")
}

func TestLeaderboard(t *testing.T) {
	router := newTestRouter(t, loadedBoard(), nil)

	rec := do(t, router, http.MethodGet, "/api/leaderboard?name=Bob")
	require.Equal(t, http.StatusOK, rec.Code)

	var board models.Scoreboard
	decode(t, rec, &board)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "Alice", board.Entries[0].Name)
	assert.Equal(t, "1", board.Entries[0].Rank)
	assert.True(t, board.Entries[1].Highlighted)
	assert.Equal(t, 40.0, board.Entries[1].WidthPercent)
}

func TestParticipant(t *testing.T) {
	router := newTestRouter(t, loadedBoard(), nil)

	rec := do(t, router, http.MethodGet, "/api/participants/Alice")
	require.Equal(t, http.StatusOK, rec.Code)

	var view models.ParticipantView
	decode(t, rec, &view)
	assert.Equal(t, "1", view.Rank)
	assert.Equal(t, 1, view.ResolvedCount)
	require.Len(t, view.Picks, 2)
	assert.Equal(t, "Q2", view.Picks[0].QuestionID)
	assert.Equal(t, models.PickCorrect, view.Picks[1].Status)
	assert.Equal(t, styles.ClassPrefix+"1", view.Picks[1].CategoryClass)

	rec = do(t, router, http.MethodGet, "/api/participants/Zed")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/participants/"+strings.Repeat("a", 201))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusAndHealth(t *testing.T) {
	b := loadedBoard()
	b.status.LastError = "sheet unavailable"
	router := newTestRouter(t, b, nil)

	rec := do(t, router, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	decode(t, rec, &status)
	assert.True(t, status.Loaded)
	assert.Equal(t, "sheet unavailable", status.LastError)
	assert.Equal(t, 2, status.Clients)
	assert.Len(t, status.Reloads, 1)

	rec = do(t, router, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReload(t *testing.T) {
	b := loadedBoard()
	denyAll := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Admin-Token") != "ok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	router := newTestRouter(t, b, denyAll)

	rec := do(t, router, http.MethodPost, "/api/reload")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, b.reloads)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/reload", nil)
		req.Header.Set("X-Admin-Token", "ok")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send().Code)

	b.reloadErr = board.ErrStaleReload
	assert.Equal(t, http.StatusOK, send().Code)

	b.reloadErr = apperrors.NewSchemaError("contest", "name", "Name")
	assert.Equal(t, http.StatusUnprocessableEntity, send().Code)

	b.reloadErr = apperrors.NewTransportError("results", errors.New("timeout"))
	rec = send()
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "timeout")
	assert.Equal(t, 4, b.reloads)

	rec = do(t, router, http.MethodGet, "/api/reload")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIndexPage(t *testing.T) {
	router := newTestRouter(t, loadedBoard(), nil)

	rec := do(t, router, http.MethodGet, "/?name=Alice")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "<title>Office Pool</title>")
	assert.Contains(t, body, "<strong>2026</strong>")
	assert.Contains(t, body, `<option value="Alice" selected>Alice</option>`)
	assert.Contains(t, body, "Alice's Picks")
	assert.Contains(t, body, "result-correct")
	assert.Contains(t, body, "."+styles.ClassPrefix+"0 {")
	assert.NotContains(t, body, `class="picks-hidden-overlay"`)

	rec = do(t, router, http.MethodGet, "/")
	assert.Contains(t, rec.Body.String(), "Select a name above")

	rec = do(t, router, http.MethodGet, "/?name=Nobody")
	assert.Contains(t, rec.Body.String(), "No participant named Nobody")
}

func TestIndexPage_PicksHidden(t *testing.T) {
	b := loadedBoard()
	for i := range b.snap.Dataset.Entries {
		b.snap.Dataset.Entries[i].Score = 0
	}
	router := newTestRouter(t, b, nil)

	rec := do(t, router, http.MethodGet, "/?name=Bob")
	assert.Contains(t, rec.Body.String(), "picks will be hidden until Kickoff")
}

func TestIndexPage_ErrorBanner(t *testing.T) {
	b := loadedBoard()
	b.status.LastError = "could not find required contest column"
	router := newTestRouter(t, b, nil)

	rec := do(t, router, http.MethodGet, "/")
	assert.Contains(t, rec.Body.String(), "Last refresh failed")
}

func TestCategoriesCSS(t *testing.T) {
	styler := styles.New(styles.NewStore(), nil)
	styler.ClassFor("Colors")
	router, err := NewRouter(Dependencies{Board: loadedBoard(), Styler: styler})
	require.NoError(t, err)

	rec := do(t, router, http.MethodGet, "/static/categories.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css"))
	assert.Contains(t, rec.Body.String(), "."+styles.ClassPrefix+"0 { background:")
}

func TestRenderMarkdown(t *testing.T) {
	assert.Equal(t, "", string(RenderMarkdown("  ")))

	out := string(RenderMarkdown("See [rules](https://example.com) <script>x</script>"))
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `target="_blank"`)
	assert.NotContains(t, out, "<script>")
}
