// Package scoring calcule le classement et la justesse des choix
package scoring

import (
	"sort"
	"strconv"

	"pickem-tracker/internal/models"
)

// Scored un participant réduit à ce qui sert au classement
type Scored struct {
	Name  string
	Score int
}

// SortEntries retourne une copie des entrées triée par score décroissant,
// puis points restants croissants. L'ordre de la feuille départage le reste.
func SortEntries(entries []models.ParticipantEntry) []models.ParticipantEntry {
	sorted := make([]models.ParticipantEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].TotalRemaining < sorted[j].TotalRemaining
	})
	return sorted
}

// RankLabels calcule les rangs d'une liste de scores déjà triée par ordre
// décroissant. Chaque groupe contigu de scores égaux reçoit le rang de sa
// première position ; les groupes de plus d'un participant sont préfixés
// par "T" : [10 10 7] -> [T1 T1 3].
func RankLabels(scores []int) []string {
	labels := make([]string, len(scores))
	i := 0
	for i < len(scores) {
		j := i + 1
		for j < len(scores) && scores[j] == scores[i] {
			j++
		}
		label := strconv.Itoa(i + 1)
		if j-i > 1 {
			label = "T" + label
		}
		for k := i; k < j; k++ {
			labels[k] = label
		}
		i = j
	}
	return labels
}

// ComputeRanks associe à chaque nom son rang. En cas de doublon de nom,
// le premier rencontré l'emporte.
func ComputeRanks(sorted []Scored) map[string]string {
	scores := make([]int, len(sorted))
	for i, s := range sorted {
		scores[i] = s.Score
	}

	labels := RankLabels(scores)
	ranks := make(map[string]string, len(sorted))
	for i, s := range sorted {
		if _, exists := ranks[s.Name]; !exists {
			ranks[s.Name] = labels[i]
		}
	}
	return ranks
}
