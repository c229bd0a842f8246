package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FoldKey normalise une étiquette (catégorie, nom de colonne) pour servir de
// clé : espaces retirés aux extrémités puis minuscules.
func FoldKey(s string) string {
	// Un Caser garde un état interne : un par appel
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}
