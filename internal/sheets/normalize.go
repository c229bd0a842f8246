package sheets

import "pickem-tracker/internal/models"

// Normalize convertit une feuille brute en table de texte.
//
// Si au moins une colonne porte un libellé, les libellés forment l'en-tête ;
// sinon toutes les lignes sont des données. Une cellule nulle devient "",
// une cellule sans valeur brute prend sa valeur affichée.
func Normalize(raw *RawTable, headerRows int) *models.Table {
	if raw == nil {
		return &models.Table{Rows: [][]string{}}
	}

	rows := make([][]string, 0, len(raw.Rows))
	for _, r := range raw.Rows {
		row := make([]string, len(r))
		for i, cell := range r {
			row[i] = cellText(cell)
		}
		rows = append(rows, row)
	}

	table := &models.Table{Rows: rows}
	if headerRows > 0 && hasLabels(raw.Labels) {
		table.Header = append([]string(nil), raw.Labels...)
		table.HasHeader = true
	}
	return table
}

func cellText(cell *RawCell) string {
	if cell == nil {
		return ""
	}
	if cell.HasValue {
		return cell.Value
	}
	return cell.Formatted
}

func hasLabels(labels []string) bool {
	for _, l := range labels {
		if l != "" {
			return true
		}
	}
	return false
}
