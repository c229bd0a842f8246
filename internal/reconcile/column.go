// Package reconcile rapproche la feuille du concours et la feuille des
// résultats malgré des en-têtes saisis à la main.
package reconcile

import (
	"regexp"
	"strings"
)

// Resolve retourne l'index de la colonne correspondant au mot-clé.
//
// Trois niveaux sont essayés dans l'ordre, la colonne la plus à gauche
// l'emportant à chaque niveau :
//  1. égalité exacte (en-tête en minuscules, sans espaces autour)
//  2. mot entier, insensible à la casse
//  3. sous-chaîne, insensible à la casse
//
// ok vaut false si aucune colonne ne correspond ; c'est un résultat normal
// pour les colonnes optionnelles.
func Resolve(headers []string, keyword string) (index int, ok bool) {
	kw := strings.ToLower(keyword)
	if kw == "" {
		return -1, false
	}

	for i, h := range headers {
		if strings.ToLower(strings.TrimSpace(h)) == kw {
			return i, true
		}
	}

	wordRe, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
	if err == nil {
		for i, h := range headers {
			if wordRe.MatchString(h) {
				return i, true
			}
		}
	}

	for i, h := range headers {
		if strings.Contains(strings.ToLower(h), kw) {
			return i, true
		}
	}

	return -1, false
}

// resolveOptional comme Resolve mais retourne -1 si introuvable
func resolveOptional(headers []string, keyword string) int {
	idx, ok := Resolve(headers, keyword)
	if !ok {
		return -1
	}
	return idx
}
