// Package sheets récupère les feuilles brutes (Google Sheets gviz ou
// classeur xlsx local) et les normalise en tables de texte.
package sheets

import "context"

// TableRef désigne une feuille à récupérer
type TableRef struct {
	Name       string // Nom logique ("contest", "results") pour les logs et erreurs
	Gid        string // Onglet Google Sheets
	Sheet      string // Nom de l'onglet dans un classeur xlsx
	HeaderRows int    // Nombre de lignes d'en-tête fusionnées en libellés de colonnes
}

// RawCell cellule telle que renvoyée par la source.
// Value n'a de sens que si HasValue ; Formatted est la valeur affichée.
type RawCell struct {
	Value     string
	HasValue  bool
	Formatted string
}

// RawTable feuille brute : libellés de colonnes et lignes de cellules.
// Une cellule nil est une cellule nulle.
type RawTable struct {
	Labels     []string
	Rows       [][]*RawCell
	HeaderRows int
}

// Source fournit les feuilles brutes
type Source interface {
	Fetch(ctx context.Context, ref TableRef) (*RawTable, error)
}
