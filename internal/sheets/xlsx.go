package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// XLSXSource lit les onglets d'un classeur local. Les premières lignes
// sont fusionnées en libellés comme le fait l'endpoint gviz.
type XLSXSource struct {
	path   string
	logger *zerolog.Logger
}

// NewXLSXSource crée une source sur le classeur path
func NewXLSXSource(path string, logger *zerolog.Logger) *XLSXSource {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &XLSXSource{path: path, logger: logger}
}

// Fetch lit l'onglet ref.Sheet. Le fichier est rouvert à chaque appel pour
// prendre en compte ses modifications.
func (s *XLSXSource) Fetch(ctx context.Context, ref TableRef) (*RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := ref.Sheet
	if sheet == "" {
		sheet = ref.Name
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	table := buildRawTable(rows, ref.HeaderRows)

	s.logger.Debug().
		Str("table", ref.Name).
		Str("sheet", sheet).
		Int("rows", len(table.Rows)).
		Dur("duration", time.Since(start)).
		Msg("Onglet xlsx chargé")

	return table, nil
}

// buildRawTable fusionne les headerRows premières lignes en libellés :
// les cellules non vides d'une colonne sont jointes par une espace.
func buildRawTable(rows [][]string, headerRows int) *RawTable {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}

	if headerRows < 0 {
		headerRows = 0
	}
	if headerRows > len(rows) {
		headerRows = len(rows)
	}

	labels := make([]string, width)
	for j := 0; j < width; j++ {
		var parts []string
		for _, r := range rows[:headerRows] {
			if j < len(r) {
				if cell := strings.TrimSpace(r[j]); cell != "" {
					parts = append(parts, cell)
				}
			}
		}
		labels[j] = strings.Join(parts, " ")
	}

	table := &RawTable{Labels: labels, HeaderRows: headerRows}
	for _, r := range rows[headerRows:] {
		cells := make([]*RawCell, width)
		for j := 0; j < len(r); j++ {
			if r[j] != "" {
				cells[j] = &RawCell{Value: r[j], HasValue: true}
			}
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}
