package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pickem-tracker/internal/errors"
	"pickem-tracker/internal/models"
)

func testConfig() Config {
	return Config{
		Contest: ContestColumns{
			Name:       "Name",
			Score:      "Score",
			Remaining:  "Remaining",
			Eliminated: "Eliminated",
		},
		Results: ResultsColumns{
			Category:   "Category",
			QuestionID: "QID",
			Prompt:     "Prompt",
			Result:     "Result",
		},
		EliminatedValue:    "Yes",
		ExcludedCategories: []string{"Informational"},
	}
}

func table(header []string, rows ...[]string) *models.Table {
	return &models.Table{Header: header, Rows: rows, HasHeader: true}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		keyword string
		want    int
		found   bool
	}{
		{"exact", []string{"Name", "Score"}, "score", 1, true},
		{"exact trims header", []string{"  Score  "}, "Score", 0, true},
		{"exact beats earlier substring", []string{"Total Score", "Scoreboard", "score"}, "Score", 2, true},
		{"word boundary beats earlier substring", []string{"Scoreboard", "Total Score"}, "score", 1, true},
		{"substring fallback", []string{"Name", "Scoreboard"}, "score", 1, true},
		{"lowest index wins", []string{"Points Remaining", "Remaining Points"}, "remaining", 0, true},
		{"special characters escaped", []string{"QxID", "The Q.ID col"}, "q.id", 1, true},
		{"not found", []string{"Name", "Score"}, "eliminated", -1, false},
		{"empty keyword", []string{"", "Name"}, "", -1, false},
		{"empty headers", nil, "name", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.headers, tt.keyword)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractID(t *testing.T) {
	assert.Equal(t, "HeadsOrTails", ExtractID("HeadsOrTails What will be the result of the coin toss?"))
	assert.Equal(t, "HeadsOrTails", ExtractID("HeadsOrTails HeadsOrTails"))
	assert.Equal(t, ExtractID("HeadsOrTails What will be..."), ExtractID("HeadsOrTails HeadsOrTails"))
	assert.Equal(t, "Q1", ExtractID("  Q1  "))
	assert.Equal(t, "Q1", ExtractID("Q1\tWhat color?"))
	assert.Equal(t, "", ExtractID("   "))
}

func TestReconcile_EndToEnd(t *testing.T) {
	contest := table([]string{"Name", "Score", "Q1 What color?"},
		[]string{"Alice", "10", "Red (10 Points)"})
	results := table([]string{"Category", "QID", "Prompt", "Result"},
		[]string{"Colors", "Q1", "What color?", "Red"})

	ds, err := Reconcile(contest, results, testConfig())
	require.NoError(t, err)

	require.Len(t, ds.Entries, 1)
	alice := ds.Entries[0]
	assert.Equal(t, "Alice", alice.Name)
	assert.Equal(t, 10, alice.Score)
	assert.Equal(t, 0, alice.TotalRemaining)
	assert.False(t, alice.Eliminated)
	assert.Equal(t, map[string]string{"Q1": "Red (10 Points)"}, alice.Answers)

	assert.Equal(t, []string{"Q1"}, ds.QuestionColumns)
	assert.Equal(t, models.QuestionInfo{Prompt: "What color?", Result: "Red", Category: "Colors"}, ds.QuestionMap["Q1"])
}

func TestReconcile_ExcludedCategory(t *testing.T) {
	contest := table([]string{"Name", "Score", "Q1 Color", "Info Tiebreak note"},
		[]string{"Alice", "3", "Red", "hello"})
	results := table([]string{"Category", "QID", "Prompt", "Result"},
		[]string{"Colors", "Q1", "Color?", ""},
		[]string{" informational ", "Info", "Read me", ""})

	ds, err := Reconcile(contest, results, testConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"Q1"}, ds.QuestionColumns)
	assert.NotContains(t, ds.QuestionMap, "Info")
	assert.NotContains(t, ds.Entries[0].Answers, "Info")
}

func TestReconcile_EntryParsing(t *testing.T) {
	contest := table([]string{"Name", "Score", "Points Remaining", "Eliminated?", "Q1 A", "Q2 B"},
		[]string{"Alice", "12 pts", "30", "Yes", "x"},
		[]string{"", "99", "0", "", "y", "z"},
		[]string{"Bob", "n/a", "-4", "yes", "", "w"},
		[]string{"  Carol ", " 7.9", "", "No"},
	)
	results := table([]string{"QID", "Prompt"},
		[]string{"Q1", "First"},
		[]string{"Q2", "Second"},
	)

	ds, err := Reconcile(contest, results, testConfig())
	require.NoError(t, err)
	require.Len(t, ds.Entries, 3, "row with empty name must be dropped")

	alice, bob, carol := ds.Entries[0], ds.Entries[1], ds.Entries[2]

	assert.Equal(t, 12, alice.Score)
	assert.Equal(t, 30, alice.TotalRemaining)
	assert.True(t, alice.Eliminated)
	assert.Equal(t, map[string]string{"Q1": "x", "Q2": ""}, alice.Answers, "missing cells become empty strings")

	assert.Equal(t, 0, bob.Score)
	assert.Equal(t, -4, bob.TotalRemaining)
	assert.False(t, bob.Eliminated, "sentinel comparison is exact")

	assert.Equal(t, "Carol", carol.Name)
	assert.Equal(t, 7, carol.Score)
	assert.Equal(t, 0, carol.TotalRemaining)

	// Catégorie et résultat optionnels absents
	assert.Equal(t, models.QuestionInfo{Prompt: "First"}, ds.QuestionMap["Q1"])
}

func TestReconcile_EveryQuestionColumnInEveryEntry(t *testing.T) {
	contest := table([]string{"Name", "Score", "Q1 a", "Unknown b", "Q2 c", ""},
		[]string{"Alice", "1"},
		[]string{"Bob", "2", "p", "q", "r", "s"},
	)
	results := table([]string{"QID", "Prompt"},
		[]string{"Q2", "Two"},
		[]string{"Q1", "One"},
		[]string{"Q3", "Three"},
	)

	ds, err := Reconcile(contest, results, testConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"Q1", "Q2"}, ds.QuestionColumns, "left-to-right order of the contest sheet")
	for _, e := range ds.Entries {
		for _, qid := range ds.QuestionColumns {
			_, ok := e.Answers[qid]
			assert.True(t, ok, "entry %s lacks %s", e.Name, qid)
		}
		assert.Len(t, e.Answers, 2)
	}
}

func TestReconcile_QuestionMapLastWriteWins(t *testing.T) {
	contest := table([]string{"Name", "Score", "Q1"}, []string{"Alice", "1", "a"})
	results := table([]string{"QID", "Prompt", "Result"},
		[]string{"Q1", "Old", ""},
		[]string{"Q1", "New", "a"},
	)

	ds, err := Reconcile(contest, results, testConfig())
	require.NoError(t, err)
	assert.Equal(t, "New", ds.QuestionMap["Q1"].Prompt)
	assert.Equal(t, "a", ds.QuestionMap["Q1"].Result)
}

func TestReconcile_MetaColumnsAreNotQuestions(t *testing.T) {
	// "Score" est aussi un identifiant de question dans les résultats
	contest := table([]string{"Name", "Score", "Q1"}, []string{"Alice", "5", "a"})
	results := table([]string{"QID", "Prompt"},
		[]string{"Score", "Not a question"},
		[]string{"Q1", "One"},
	)

	ds, err := Reconcile(contest, results, testConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1"}, ds.QuestionColumns)
}

func TestReconcile_DuplicateNamesAreKept(t *testing.T) {
	contest := table([]string{"Name", "Score"},
		[]string{"Alice", "1"},
		[]string{"Alice", "2"},
	)
	results := table([]string{"QID", "Prompt"})

	ds, err := Reconcile(contest, results, testConfig())
	require.NoError(t, err)
	require.Len(t, ds.Entries, 2)

	first, ok := ds.FindEntry("Alice")
	require.True(t, ok)
	assert.Equal(t, 1, first.Score)
}

func TestReconcile_HeaderlessTableUsesFirstRow(t *testing.T) {
	contest := &models.Table{Rows: [][]string{{"Name", "Score"}, {"Alice", "4"}}}
	results := &models.Table{Rows: [][]string{{"QID", "Prompt"}}}

	ds, err := Reconcile(contest, results, testConfig())
	require.NoError(t, err)
	require.Len(t, ds.Entries, 1)
	assert.Equal(t, 4, ds.Entries[0].Score)
}

func TestReconcile_SchemaErrors(t *testing.T) {
	good := table([]string{"QID", "Prompt"})
	tests := []struct {
		name    string
		contest *models.Table
		results *models.Table
		column  string
	}{
		{"missing name", table([]string{"Player", "Score"}), good, "name"},
		{"missing score", table([]string{"Name", "Points"}), good, "score"},
		{"missing question id", table([]string{"Name", "Score"}), table([]string{"Prompt"}), "question id"},
		{"missing prompt", table([]string{"Name", "Score"}), table([]string{"QID", "Result"}), "prompt"},
		{"empty contest", &models.Table{}, good, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Reconcile(tt.contest, tt.results, testConfig())
			assert.Nil(t, ds)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrSchema))

			var schemaErr *apperrors.SchemaError
			require.True(t, apperrors.As(err, &schemaErr))
			assert.Equal(t, tt.column, schemaErr.Column)
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := map[string]int{
		"10":                   10,
		" 42 ":                 42,
		"-3":                   -3,
		"+8":                   8,
		"7.9":                  7,
		"12pts":                12,
		"":                     0,
		"abc":                  0,
		"-":                    0,
		"99999999999999999999": 0,
		"0x1A":                 26,
		"-0x10 pts":            -16,
		"0X":                   0,
		"0xZ":                  0,
		"007":                  7,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseInt(in), "parseInt(%q)", in)
	}
}
