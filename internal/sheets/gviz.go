package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL hôte de l'API Google Sheets
const DefaultBaseURL = "https://docs.google.com"

var (
	ErrInvalidResponse = errors.New("invalid response from Google Sheets")
	ErrQueryFailed     = errors.New("google sheets query failed")
)

// GvizConfig configuration du client gviz
type GvizConfig struct {
	BaseURL string
	SheetID string
	Timeout time.Duration
}

// GvizClient lit les onglets d'un classeur Google Sheets via l'endpoint
// gviz/tq, qui fusionne lui-même les lignes d'en-tête demandées.
type GvizClient struct {
	config     GvizConfig
	httpClient *http.Client
	logger     *zerolog.Logger
}

// NewGvizClient crée un client gviz
func NewGvizClient(config GvizConfig, logger *zerolog.Logger) *GvizClient {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &GvizClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}
}

// Fetch récupère un onglet
func (c *GvizClient) Fetch(ctx context.Context, ref TableRef) (*RawTable, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL(ref), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load sheet data: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google sheets returned status %d", resp.StatusCode)
	}

	table, err := ParseGviz(body)
	if err != nil {
		return nil, err
	}
	table.HeaderRows = ref.HeaderRows

	c.logger.Debug().
		Str("table", ref.Name).
		Str("gid", ref.Gid).
		Int("rows", len(table.Rows)).
		Dur("duration", time.Since(start)).
		Msg("Feuille gviz chargée")

	return table, nil
}

func (c *GvizClient) queryURL(ref TableRef) string {
	params := url.Values{}
	params.Set("gid", ref.Gid)
	params.Set("tqx", "out:json")
	if ref.HeaderRows > 0 {
		params.Set("headers", strconv.Itoa(ref.HeaderRows))
	}
	return fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?%s",
		strings.TrimRight(c.config.BaseURL, "/"), url.PathEscape(c.config.SheetID), params.Encode())
}

// ParseGviz décode une réponse gviz, enveloppée ou non dans l'appel
// google.visualization.Query.setResponse(...)
func ParseGviz(body []byte) (*RawTable, error) {
	payload := unwrapJSONP(string(body))
	if !gjson.Valid(payload) {
		return nil, ErrInvalidResponse
	}

	response := gjson.Parse(payload)
	if response.Get("status").String() == "error" {
		msg := response.Get("errors.0.detailed_message").String()
		if msg == "" {
			msg = response.Get("errors.0.message").String()
		}
		return nil, fmt.Errorf("%w: %s", ErrQueryFailed, msg)
	}

	table := response.Get("table")
	if !table.IsObject() {
		return nil, ErrInvalidResponse
	}

	raw := &RawTable{}
	table.Get("cols").ForEach(func(_, col gjson.Result) bool {
		raw.Labels = append(raw.Labels, col.Get("label").String())
		return true
	})

	table.Get("rows").ForEach(func(_, row gjson.Result) bool {
		var cells []*RawCell
		row.Get("c").ForEach(func(_, cell gjson.Result) bool {
			cells = append(cells, parseCell(cell))
			return true
		})
		raw.Rows = append(raw.Rows, cells)
		return true
	})

	return raw, nil
}

func parseCell(cell gjson.Result) *RawCell {
	if cell.Type == gjson.Null || !cell.IsObject() {
		return nil
	}
	v := cell.Get("v")
	return &RawCell{
		Value:     v.String(),
		HasValue:  v.Exists() && v.Type != gjson.Null,
		Formatted: cell.Get("f").String(),
	}
}

func unwrapJSONP(body string) string {
	body = strings.TrimSpace(body)
	if strings.HasPrefix(body, "{") {
		return body
	}
	start := strings.Index(body, "(")
	end := strings.LastIndex(body, ")")
	if start == -1 || end <= start {
		return body
	}
	return body[start+1 : end]
}
