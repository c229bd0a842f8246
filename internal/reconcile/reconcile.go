package reconcile

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	apperrors "pickem-tracker/internal/errors"
	"pickem-tracker/internal/models"
	"pickem-tracker/internal/utils"
)

// ContestColumns mots-clés des colonnes de la feuille du concours
type ContestColumns struct {
	Name       string
	Score      string
	Remaining  string
	Eliminated string
}

// ResultsColumns mots-clés des colonnes de la feuille des résultats
type ResultsColumns struct {
	Category   string
	QuestionID string
	Prompt     string
	Result     string
}

// Config paramètres du rapprochement
type Config struct {
	Contest            ContestColumns
	Results            ResultsColumns
	EliminatedValue    string   // Valeur exacte signifiant "éliminé"
	ExcludedCategories []string // Catégories ignorées (ex: Informational)
}

// Reconciler construit un Dataset à partir des deux feuilles normalisées
type Reconciler struct {
	cfg      Config
	excluded map[string]struct{}
	logger   *zerolog.Logger
}

// New crée un Reconciler
func New(cfg Config, logger *zerolog.Logger) *Reconciler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	excluded := make(map[string]struct{}, len(cfg.ExcludedCategories))
	for _, c := range cfg.ExcludedCategories {
		excluded[utils.FoldKey(c)] = struct{}{}
	}

	return &Reconciler{cfg: cfg, excluded: excluded, logger: logger}
}

// Reconcile raccourci pour New(cfg, nil).Reconcile
func Reconcile(contest, results *models.Table, cfg Config) (*models.Dataset, error) {
	return New(cfg, nil).Reconcile(contest, results)
}

type contestLayout struct {
	name, score, remaining, eliminated int
}

type resultsLayout struct {
	category, questionID, prompt, result int
}

type questionColumn struct {
	index int
	id    string
}

// Reconcile rapproche les deux feuilles.
//
// La première ligne de chaque grille sert d'en-tête. Une SchemaError est
// retournée si le nom ou le score (concours), l'identifiant ou l'intitulé
// (résultats) sont introuvables.
func (r *Reconciler) Reconcile(contest, results *models.Table) (*models.Dataset, error) {
	contestGrid := contest.Grid()
	resultsGrid := results.Grid()

	contestHeader, contestData := splitHeader(contestGrid)
	resultsHeader, resultsData := splitHeader(resultsGrid)

	cl, err := r.resolveContest(contestHeader)
	if err != nil {
		return nil, err
	}
	rl, err := r.resolveResults(resultsHeader)
	if err != nil {
		return nil, err
	}

	candidates := r.candidateIDs(resultsData, rl)
	questionMap := r.questionMap(resultsData, rl)
	columns := questionColumns(contestHeader, cl, candidates)

	entries := make([]models.ParticipantEntry, 0, len(contestData))
	seen := make(map[string]struct{}, len(contestData))
	for _, row := range contestData {
		name := strings.TrimSpace(models.Cell(row, cl.name))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			r.logger.Warn().Str("name", name).Msg("Nom de participant en double dans la feuille du concours")
		}
		seen[name] = struct{}{}

		answers := make(map[string]string, len(columns))
		for _, qc := range columns {
			answers[qc.id] = models.Cell(row, qc.index)
		}

		entry := models.ParticipantEntry{
			Name:    name,
			Score:   parseInt(models.Cell(row, cl.score)),
			Answers: answers,
		}
		if cl.remaining != -1 {
			entry.TotalRemaining = parseInt(models.Cell(row, cl.remaining))
		}
		if cl.eliminated != -1 {
			entry.Eliminated = models.Cell(row, cl.eliminated) == r.cfg.EliminatedValue
		}
		entries = append(entries, entry)
	}

	ids := make([]string, len(columns))
	for i, qc := range columns {
		ids[i] = qc.id
	}

	r.logger.Debug().
		Int("entries", len(entries)).
		Int("questions", len(ids)).
		Int("results_rows", len(resultsData)).
		Msg("Feuilles rapprochées")

	return &models.Dataset{
		Entries:         entries,
		QuestionMap:     questionMap,
		QuestionColumns: ids,
	}, nil
}

func (r *Reconciler) resolveContest(header []string) (contestLayout, error) {
	c := r.cfg.Contest
	name, ok := Resolve(header, c.Name)
	if !ok {
		return contestLayout{}, apperrors.NewSchemaError("contest", "name", c.Name)
	}
	score, ok := Resolve(header, c.Score)
	if !ok {
		return contestLayout{}, apperrors.NewSchemaError("contest", "score", c.Score)
	}
	return contestLayout{
		name:       name,
		score:      score,
		remaining:  resolveOptional(header, c.Remaining),
		eliminated: resolveOptional(header, c.Eliminated),
	}, nil
}

func (r *Reconciler) resolveResults(header []string) (resultsLayout, error) {
	c := r.cfg.Results
	qid, ok := Resolve(header, c.QuestionID)
	if !ok {
		return resultsLayout{}, apperrors.NewSchemaError("results", "question id", c.QuestionID)
	}
	prompt, ok := Resolve(header, c.Prompt)
	if !ok {
		return resultsLayout{}, apperrors.NewSchemaError("results", "prompt", c.Prompt)
	}
	return resultsLayout{
		category:   resolveOptional(header, c.Category),
		questionID: qid,
		prompt:     prompt,
		result:     resolveOptional(header, c.Result),
	}, nil
}

func (r *Reconciler) isExcluded(category string) bool {
	_, ok := r.excluded[utils.FoldKey(category)]
	return ok
}

// candidateIDs identifiants des questions présentes dans les résultats,
// hors catégories exclues
func (r *Reconciler) candidateIDs(rows [][]string, rl resultsLayout) map[string]struct{} {
	ids := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		qid := strings.TrimSpace(models.Cell(row, rl.questionID))
		if qid == "" || r.isExcluded(models.Cell(row, rl.category)) {
			continue
		}
		ids[qid] = struct{}{}
	}
	return ids
}

// questionMap métadonnées par question ; la dernière ligne l'emporte
func (r *Reconciler) questionMap(rows [][]string, rl resultsLayout) map[string]models.QuestionInfo {
	questions := make(map[string]models.QuestionInfo, len(rows))
	for _, row := range rows {
		category := models.Cell(row, rl.category)
		if r.isExcluded(category) {
			continue
		}
		qid := strings.TrimSpace(models.Cell(row, rl.questionID))
		if qid == "" {
			continue
		}
		questions[qid] = models.QuestionInfo{
			Prompt:   models.Cell(row, rl.prompt),
			Result:   models.Cell(row, rl.result),
			Category: category,
		}
	}
	return questions
}

// questionColumns colonnes du concours dont le premier mot du libellé est
// une question connue, dans l'ordre de la feuille. Une question présente
// dans plusieurs colonnes garde la première.
func questionColumns(header []string, cl contestLayout, candidates map[string]struct{}) []questionColumn {
	meta := map[int]struct{}{cl.name: {}, cl.score: {}}
	if cl.remaining != -1 {
		meta[cl.remaining] = struct{}{}
	}
	if cl.eliminated != -1 {
		meta[cl.eliminated] = struct{}{}
	}

	var columns []questionColumn
	taken := make(map[string]struct{})
	for j, label := range header {
		if _, skip := meta[j]; skip {
			continue
		}
		if strings.TrimSpace(label) == "" {
			continue
		}
		qid := ExtractID(label)
		if _, ok := candidates[qid]; !ok {
			continue
		}
		if _, dup := taken[qid]; dup {
			continue
		}
		taken[qid] = struct{}{}
		columns = append(columns, questionColumn{index: j, id: qid})
	}
	return columns
}

func splitHeader(grid [][]string) ([]string, [][]string) {
	if len(grid) == 0 {
		return nil, nil
	}
	return grid[0], grid[1:]
}

// parseInt lit l'entier en tête de chaîne ("12 pts" -> 12, "7.5" -> 7,
// "0x1A" -> 26) et retourne 0 si aucun chiffre n'est trouvé.
func parseInt(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}

	base, isDigit := 10, isDecimal
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, isDigit = 16, isHex
		s = s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.ParseInt(sign+s[:end], base, 0)
	if err != nil {
		return 0
	}
	return int(n)
}

func isDecimal(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDecimal(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
