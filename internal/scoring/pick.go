package scoring

import (
	"regexp"
	"strings"
)

// pointsSuffix annotation de points en fin de choix, ex: "Heads (10 Points)"
var pointsSuffix = regexp.MustCompile(`\s*\(\d+\s*Points?\)\s*$`)

// PickSelection retire l'annotation de points d'un choix brut
func PickSelection(pick string) string {
	return strings.TrimSpace(pointsSuffix.ReplaceAllString(pick, ""))
}

// IsCorrect indique si un choix correspond au résultat publié.
//
// Le choix est correct s'il est égal au résultat ou si l'un contient
// l'autre ("Yes" contre "Yes - confirmed"). Un choix
// vide n'est jamais correct, une question sans résultat non plus.
func IsCorrect(pick, result string) bool {
	selection := PickSelection(pick)
	if selection == "" || result == "" {
		return false
	}
	return result == selection ||
		strings.Contains(result, selection) ||
		strings.Contains(selection, result)
}
