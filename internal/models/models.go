// Package models contient toutes les structures de données de l'application
package models

import "time"

// ============================================================================
// TABLES BRUTES
// ============================================================================

// Table représente une feuille normalisée : une ligne d'en-tête optionnelle
// suivie des lignes de données, toutes les cellules en texte.
type Table struct {
	Header    []string   `json:"header,omitempty"`
	Rows      [][]string `json:"rows"`
	HasHeader bool       `json:"has_header"`
}

// Grid retourne la table sous forme de grille, en-tête en première ligne
// lorsqu'il existe.
func (t *Table) Grid() [][]string {
	if t == nil {
		return nil
	}
	if !t.HasHeader {
		return t.Rows
	}
	grid := make([][]string, 0, len(t.Rows)+1)
	grid = append(grid, t.Header)
	return append(grid, t.Rows...)
}

// Cell retourne la cellule (row, col) ou "" si elle est hors limites
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// ============================================================================
// JEU DE DONNÉES
// ============================================================================

// QuestionInfo métadonnées d'une question issues de la feuille des résultats
type QuestionInfo struct {
	Prompt   string `json:"prompt"`
	Result   string `json:"result"` // Vide = question non résolue
	Category string `json:"category"`
}

// Resolved indique si la question a un résultat publié
func (q QuestionInfo) Resolved() bool {
	return q.Result != ""
}

// ParticipantEntry une ligne de la feuille du concours
type ParticipantEntry struct {
	Name           string            `json:"name"`
	Score          int               `json:"score"`
	TotalRemaining int               `json:"total_remaining"`
	Eliminated     bool              `json:"eliminated"`
	Answers        map[string]string `json:"answers"` // QuestionID -> choix brut
}

// Dataset résultat d'un rapprochement complet des deux feuilles.
// Il n'est jamais modifié après publication.
type Dataset struct {
	Entries         []ParticipantEntry      `json:"entries"`
	QuestionMap     map[string]QuestionInfo `json:"question_map"`
	QuestionColumns []string                `json:"question_columns"`
}

// FindEntry retourne la première entrée portant ce nom
func (d *Dataset) FindEntry(name string) (*ParticipantEntry, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Entries {
		if d.Entries[i].Name == name {
			return &d.Entries[i], true
		}
	}
	return nil, false
}

// ResolvedCount nombre de questions ayant un résultat publié
func (d *Dataset) ResolvedCount() int {
	count := 0
	for _, qid := range d.QuestionColumns {
		if info, ok := d.QuestionMap[qid]; ok && info.Resolved() {
			count++
		}
	}
	return count
}

// Snapshot jeu de données publié avec son horodatage de chargement
type Snapshot struct {
	Dataset  *Dataset  `json:"dataset"`
	LoadedAt time.Time `json:"loaded_at"`
	Sequence uint64    `json:"sequence"`
	Restored bool      `json:"restored"` // Rechargé depuis la base au démarrage
}

// ============================================================================
// WEBSOCKET MESSAGES
// ============================================================================

// WSMessageType types de messages WebSocket
type WSMessageType string

const (
	WSTypeError WSMessageType = "error"
	WSTypePing  WSMessageType = "ping"
	WSTypePong  WSMessageType = "pong"

	WSTypeDatasetUpdated WSMessageType = "dataset_updated"
	WSTypeReloadFailed   WSMessageType = "reload_failed"
)

// WSMessage message WebSocket générique
type WSMessage struct {
	Type    WSMessageType `json:"type"`
	Payload interface{}   `json:"payload,omitempty"`
	Error   string        `json:"error,omitempty"`
}
