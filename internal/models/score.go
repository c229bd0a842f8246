package models

// Statuts affichés pour un participant
const (
	StatusAlive = "ALIVE"
	StatusOut   = "OUT"
)

// PickStatus état d'un choix pour une question
type PickStatus string

const (
	PickPending   PickStatus = "pending"
	PickCorrect   PickStatus = "correct"
	PickIncorrect PickStatus = "incorrect"
)

// ScoreboardEntry une ligne du classement
type ScoreboardEntry struct {
	Rank           string  `json:"rank"` // "3" ou "T1" en cas d'égalité
	Name           string  `json:"name"`
	Score          int     `json:"score"`
	TotalRemaining int     `json:"total_remaining"`
	Eliminated     bool    `json:"eliminated"`
	Highlighted    bool    `json:"highlighted"`
	WidthPercent   float64 `json:"width_percent"`
}

// ScoreStats statistiques descriptives des scores
type ScoreStats struct {
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// Scoreboard classement complet
type Scoreboard struct {
	Entries []ScoreboardEntry `json:"entries"`
	Stats   ScoreStats        `json:"stats"`
}

// PickRow une ligne du tableau des choix d'un participant
type PickRow struct {
	QuestionID    string     `json:"question_id"`
	Question      string     `json:"question"`
	Category      string     `json:"category"`
	CategoryClass string     `json:"category_class,omitempty"`
	Pick          string     `json:"pick"`
	Result        string     `json:"result"`
	Status        PickStatus `json:"status"`
}

// Resolved indique si la question a un résultat publié
func (p PickRow) Resolved() bool {
	return p.Status != PickPending
}

// ParticipantView tout ce que l'affichage montre pour un participant choisi
type ParticipantView struct {
	Name           string     `json:"name"`
	Score          int        `json:"score"`
	Rank           string     `json:"rank"`
	TotalRemaining int        `json:"total_remaining"`
	Status         string     `json:"status"`
	ResolvedCount  int        `json:"resolved_count"`
	TotalQuestions int        `json:"total_questions"`
	PicksHidden    bool       `json:"picks_hidden"` // Personne n'a de points : choix masqués
	Scoreboard     Scoreboard `json:"scoreboard"`
	Picks          []PickRow  `json:"picks"`
}
