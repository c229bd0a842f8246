package reconcile

import (
	"strings"
	"unicode"
)

// ExtractID retourne l'identifiant de question porté par un libellé de colonne.
//
// Quand plusieurs lignes d'en-tête sont fusionnées, le libellé concatène
// l'identifiant et l'intitulé du formulaire, par exemple
// "HeadsOrTails What will be the result...". L'identifiant est toujours le
// premier mot.
func ExtractID(label string) string {
	trimmed := strings.TrimSpace(label)
	if idx := strings.IndexFunc(trimmed, unicode.IsSpace); idx != -1 {
		return trimmed[:idx]
	}
	return trimmed
}
