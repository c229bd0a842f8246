// Package output met en forme les résultats de la CLI (tableau, JSON, YAML)
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"pickem-tracker/internal/models"
)

// Format format de sortie
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat valide un format ; vide signifie détection automatique
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, "":
		return format, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of: table, json, yaml", s)
	}
}

// DetectFormat tableau sur un terminal, JSON sinon
func DetectFormat(explicit Format) Format {
	if explicit != "" {
		return explicit
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatTable
	}
	return FormatJSON
}

// Table données tabulaires
type Table struct {
	Headers    []string
	Rows       [][]string
	AlignRight []bool // par colonne
}

// Tabular valeur qui sait se présenter en tableau
type Tabular interface {
	Tables() []Table
}

// Write écrit data dans le format demandé. Le format tableau exige une
// valeur Tabular ; les autres valeurs retombent sur du JSON.
func Write(w io.Writer, format Format, data interface{}) error {
	switch format {
	case FormatYAML:
		out, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err

	case FormatTable:
		if t, ok := data.(Tabular); ok {
			for i, table := range t.Tables() {
				if i > 0 {
					fmt.Fprintln(w)
				}
				if err := renderTable(w, table); err != nil {
					return err
				}
			}
			return nil
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func renderTable(w io.Writer, t Table) error {
	config := tablewriter.Config{}
	if len(t.AlignRight) > 0 {
		align := make([]tw.Align, len(t.AlignRight))
		for i, right := range t.AlignRight {
			if right {
				align[i] = tw.AlignRight
			} else {
				align[i] = tw.AlignLeft
			}
		}
		config.Row.Alignment = tw.CellAlignment{PerColumn: align}
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(config))
	if len(t.Headers) > 0 {
		headers := make([]any, len(t.Headers))
		for i, h := range t.Headers {
			headers[i] = h
		}
		table.Header(headers...)
	}
	for _, row := range t.Rows {
		cells := make([]any, len(row))
		for i, c := range row {
			cells[i] = c
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}
	return table.Render()
}

// ScoreboardTable classement complet
type ScoreboardTable models.Scoreboard

// Tables implémente Tabular
func (s ScoreboardTable) Tables() []Table {
	t := Table{
		Headers:    []string{"Rank", "Name", "Score", "Remaining", "Status"},
		AlignRight: []bool{true, false, true, true, false},
	}
	for _, e := range s.Entries {
		name := e.Name
		if e.Highlighted {
			name = "> " + name
		}
		t.Rows = append(t.Rows, []string{
			e.Rank, name, strconv.Itoa(e.Score), strconv.Itoa(e.TotalRemaining), status(e.Eliminated),
		})
	}

	stats := Table{
		Headers: []string{"Max", "Mean", "Median"},
		Rows: [][]string{{
			strconv.Itoa(s.Stats.Max),
			strconv.FormatFloat(s.Stats.Mean, 'f', 1, 64),
			strconv.FormatFloat(s.Stats.Median, 'f', 1, 64),
		}},
	}
	return []Table{t, stats}
}

// ParticipantTable résumé et choix d'un participant
type ParticipantTable models.ParticipantView

// Tables implémente Tabular
func (p ParticipantTable) Tables() []Table {
	summary := Table{
		Headers: []string{"Name", "Score", "Rank", "Remaining", "Status", "Resolved"},
		Rows: [][]string{{
			p.Name,
			strconv.Itoa(p.Score),
			p.Rank,
			strconv.Itoa(p.TotalRemaining),
			p.Status,
			fmt.Sprintf("%d/%d", p.ResolvedCount, p.TotalQuestions),
		}},
	}

	picks := Table{Headers: []string{"Category", "Question", "Pick", "Result", ""}}
	for _, row := range p.Picks {
		pick := row.Pick
		if p.PicksHidden {
			pick = "(hidden)"
		}
		result := row.Result
		if result == "" {
			result = "--"
		}
		picks.Rows = append(picks.Rows, []string{row.Category, row.Question, pick, result, mark(row.Status)})
	}

	return []Table{summary, picks}
}

func status(eliminated bool) string {
	if eliminated {
		return models.StatusOut
	}
	return models.StatusAlive
}

func mark(s models.PickStatus) string {
	switch s {
	case models.PickCorrect:
		return "✓"
	case models.PickIncorrect:
		return "✗"
	default:
		return ""
	}
}
