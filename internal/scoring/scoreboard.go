package scoring

import (
	"errors"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"pickem-tracker/internal/models"
)

// ErrParticipantNotFound aucun participant ne porte ce nom
var ErrParticipantNotFound = errors.New("participant not found")

// minBarPercent largeur minimale d'une barre du classement
const minBarPercent = 2.0

// CategoryStyler attribue une classe CSS à une catégorie
type CategoryStyler interface {
	ClassFor(category string) string
}

// BuildScoreboard construit le classement, en mettant en avant highlight
func BuildScoreboard(ds *models.Dataset, highlight string) models.Scoreboard {
	if ds == nil {
		return models.Scoreboard{Entries: []models.ScoreboardEntry{}}
	}

	sorted := SortEntries(ds.Entries)
	ranks := ComputeRanks(toScored(sorted))
	summary := computeStats(sorted)

	maxScore := summary.Max
	if maxScore < 1 {
		maxScore = 1
	}

	entries := make([]models.ScoreboardEntry, 0, len(sorted))
	for _, e := range sorted {
		width := float64(e.Score) / float64(maxScore) * 100
		entries = append(entries, models.ScoreboardEntry{
			Rank:           ranks[e.Name],
			Name:           e.Name,
			Score:          e.Score,
			TotalRemaining: e.TotalRemaining,
			Eliminated:     e.Eliminated,
			Highlighted:    highlight != "" && e.Name == highlight,
			WidthPercent:   math.Max(width, minBarPercent),
		})
	}

	return models.Scoreboard{Entries: entries, Stats: summary}
}

// BuildParticipantView construit la vue complète d'un participant
func BuildParticipantView(ds *models.Dataset, name string, styler CategoryStyler) (*models.ParticipantView, error) {
	selected, ok := ds.FindEntry(name)
	if !ok {
		return nil, ErrParticipantNotFound
	}

	board := BuildScoreboard(ds, name)

	rank := ""
	for _, e := range board.Entries {
		if e.Name == name {
			rank = e.Rank
			break
		}
	}

	status := models.StatusAlive
	if selected.Eliminated {
		status = models.StatusOut
	}

	return &models.ParticipantView{
		Name:           selected.Name,
		Score:          selected.Score,
		Rank:           rank,
		TotalRemaining: selected.TotalRemaining,
		Status:         status,
		ResolvedCount:  ds.ResolvedCount(),
		TotalQuestions: len(ds.QuestionColumns),
		PicksHidden:    NoOneHasPoints(ds.Entries),
		Scoreboard:     board,
		Picks:          buildPicks(ds, selected, styler),
	}, nil
}

// NoOneHasPoints vrai tant que la compétition n'a pas commencé ; les
// choix restent alors masqués
func NoOneHasPoints(entries []models.ParticipantEntry) bool {
	for _, e := range entries {
		if e.Score != 0 {
			return false
		}
	}
	return true
}

// SortedNames noms non vides triés pour le sélecteur
func SortedNames(ds *models.Dataset) []string {
	if ds == nil {
		return []string{}
	}
	names := make([]string, 0, len(ds.Entries))
	for _, e := range ds.Entries {
		if e.Name != "" {
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)
	return names
}

// buildPicks lignes du tableau des choix, questions non résolues en premier
func buildPicks(ds *models.Dataset, entry *models.ParticipantEntry, styler CategoryStyler) []models.PickRow {
	qids := make([]string, len(ds.QuestionColumns))
	copy(qids, ds.QuestionColumns)
	sort.SliceStable(qids, func(i, j int) bool {
		return !ds.QuestionMap[qids[i]].Resolved() && ds.QuestionMap[qids[j]].Resolved()
	})

	rows := make([]models.PickRow, 0, len(qids))
	for _, qid := range qids {
		info := ds.QuestionMap[qid]
		pick := entry.Answers[qid]

		question := info.Prompt
		if question == "" {
			question = qid
		}

		status := models.PickPending
		if info.Resolved() {
			status = models.PickIncorrect
			if IsCorrect(pick, info.Result) {
				status = models.PickCorrect
			}
		}

		row := models.PickRow{
			QuestionID: qid,
			Question:   question,
			Category:   info.Category,
			Pick:       pick,
			Result:     info.Result,
			Status:     status,
		}
		if styler != nil {
			row.CategoryClass = styler.ClassFor(info.Category)
		}
		rows = append(rows, row)
	}
	return rows
}

func toScored(entries []models.ParticipantEntry) []Scored {
	scored := make([]Scored, len(entries))
	for i, e := range entries {
		scored[i] = Scored{Name: e.Name, Score: e.Score}
	}
	return scored
}

func computeStats(entries []models.ParticipantEntry) models.ScoreStats {
	if len(entries) == 0 {
		return models.ScoreStats{}
	}

	data := make(stats.Float64Data, len(entries))
	for i, e := range entries {
		data[i] = float64(e.Score)
	}

	var summary models.ScoreStats
	if maxScore, err := data.Max(); err == nil {
		summary.Max = int(maxScore)
	}
	if mean, err := data.Mean(); err == nil {
		summary.Mean = mean
	}
	if median, err := data.Median(); err == nil {
		summary.Median = median
	}
	return summary
}
