// Package config charge la configuration du tableau des scores :
// valeurs par défaut, fichier YAML optionnel, fichier .env et variables
// d'environnement préfixées PICKEM_.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	apperrors "pickem-tracker/internal/errors"
	"pickem-tracker/internal/logging"
	"pickem-tracker/internal/reconcile"
	"pickem-tracker/internal/sheets"
	"pickem-tracker/internal/utils"
)

// EnvPrefix préfixe des variables d'environnement
const EnvPrefix = "PICKEM"

// Config configuration complète de l'application
type Config struct {
	Port         string
	DatabasePath string

	SheetID        string
	ContestGid     string
	ResultsGid     string
	ContestSheet   string
	ResultsSheet   string
	ContestHeaders int
	ResultsHeaders int
	XLSXPath       string
	SheetsBaseURL  string
	SheetsTimeout  time.Duration

	ContestColumns     reconcile.ContestColumns
	ResultsColumns     reconcile.ResultsColumns
	EliminatedValue    string
	ExcludedCategories []string

	RefreshInterval time.Duration

	PageTitle    string
	PageSubtitle string

	AdminTokenHash string

	LogLevel  string
	LogFormat string
	LogOutput string
}

// SetDefaults enregistre les valeurs par défaut dans v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("database.path", "./data/pickem.db")

	v.SetDefault("sheets.id", "")
	v.SetDefault("sheets.contest_gid", "0")
	v.SetDefault("sheets.results_gid", "")
	v.SetDefault("sheets.contest_sheet", "Contest")
	v.SetDefault("sheets.results_sheet", "Results")
	v.SetDefault("sheets.contest_headers", 3)
	v.SetDefault("sheets.results_headers", 1)
	v.SetDefault("sheets.xlsx_path", "")
	v.SetDefault("sheets.base_url", sheets.DefaultBaseURL)
	v.SetDefault("sheets.timeout", 15*time.Second)

	v.SetDefault("contest.columns.name", "Name")
	v.SetDefault("contest.columns.score", "Score")
	v.SetDefault("contest.columns.remaining", "Remaining")
	v.SetDefault("contest.columns.eliminated", "Eliminated")
	v.SetDefault("contest.eliminated_value", "Yes")

	v.SetDefault("results.columns.category", "Category")
	v.SetDefault("results.columns.question_id", "Question ID")
	v.SetDefault("results.columns.prompt", "Prompt")
	v.SetDefault("results.columns.result", "Result")
	v.SetDefault("results.excluded_categories", []string{"Informational"})

	v.SetDefault("refresh.interval", 60*time.Second)

	v.SetDefault("page.title", "Pick'em Scoreboard")
	v.SetDefault("page.subtitle", "")

	v.SetDefault("admin.token_hash", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
}

// New prépare une instance viper : défauts, environnement et fichier
// de configuration éventuel (configFile vide : ./pickem.yaml s'il existe)
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = os.Getenv(EnvPrefix + "_CONFIG")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.NewConfigError("config", fmt.Sprintf("cannot read %s: %v", configFile, err))
		}
		return v, nil
	}

	v.SetConfigName("pickem")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, apperrors.NewConfigError("config", err.Error())
		}
	}
	return v, nil
}

// Load charge .env puis la configuration et la valide
func Load(configFile string) (*Config, error) {
	// .env absent : rien à faire
	_ = godotenv.Load()

	v, err := New(configFile)
	if err != nil {
		return nil, err
	}

	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromViper construit la Config à partir des clés de v
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Port:         v.GetString("server.port"),
		DatabasePath: v.GetString("database.path"),

		SheetID:        strings.TrimSpace(v.GetString("sheets.id")),
		ContestGid:     strings.TrimSpace(v.GetString("sheets.contest_gid")),
		ResultsGid:     strings.TrimSpace(v.GetString("sheets.results_gid")),
		ContestSheet:   v.GetString("sheets.contest_sheet"),
		ResultsSheet:   v.GetString("sheets.results_sheet"),
		ContestHeaders: v.GetInt("sheets.contest_headers"),
		ResultsHeaders: v.GetInt("sheets.results_headers"),
		XLSXPath:       v.GetString("sheets.xlsx_path"),
		SheetsBaseURL:  v.GetString("sheets.base_url"),
		SheetsTimeout:  v.GetDuration("sheets.timeout"),

		ContestColumns: reconcile.ContestColumns{
			Name:       v.GetString("contest.columns.name"),
			Score:      v.GetString("contest.columns.score"),
			Remaining:  v.GetString("contest.columns.remaining"),
			Eliminated: v.GetString("contest.columns.eliminated"),
		},
		ResultsColumns: reconcile.ResultsColumns{
			Category:   v.GetString("results.columns.category"),
			QuestionID: v.GetString("results.columns.question_id"),
			Prompt:     v.GetString("results.columns.prompt"),
			Result:     v.GetString("results.columns.result"),
		},
		EliminatedValue:    v.GetString("contest.eliminated_value"),
		ExcludedCategories: stringList(v, "results.excluded_categories"),

		RefreshInterval: v.GetDuration("refresh.interval"),

		PageTitle:    v.GetString("page.title"),
		PageSubtitle: v.GetString("page.subtitle"),

		AdminTokenHash: v.GetString("admin.token_hash"),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		LogOutput: v.GetString("log.output"),
	}
}

// stringList lit une liste : séquence YAML, ou chaîne séparée par des
// virgules (variable d'environnement)
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}

	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// UsesWorkbook indique si les feuilles sont lues depuis un classeur local
func (c *Config) UsesWorkbook() bool {
	return c.XLSXPath != ""
}

// Validate vérifie la cohérence de la configuration
func (c *Config) Validate() error {
	if c.UsesWorkbook() {
		if strings.TrimSpace(c.ContestSheet) == "" {
			return apperrors.NewConfigError("sheets.contest_sheet", "required with sheets.xlsx_path")
		}
		if strings.TrimSpace(c.ResultsSheet) == "" {
			return apperrors.NewConfigError("sheets.results_sheet", "required with sheets.xlsx_path")
		}
	} else {
		if err := utils.ValidateSheetID(c.SheetID); err != nil {
			return apperrors.NewConfigError("sheets.id", err.Error())
		}
		if err := utils.ValidateGID(c.ContestGid); err != nil {
			return apperrors.NewConfigError("sheets.contest_gid", err.Error())
		}
		if err := utils.ValidateGID(c.ResultsGid); err != nil {
			return apperrors.NewConfigError("sheets.results_gid", err.Error())
		}
	}

	if c.ContestHeaders < 0 {
		return apperrors.NewConfigError("sheets.contest_headers", "must be >= 0")
	}
	if c.ResultsHeaders < 0 {
		return apperrors.NewConfigError("sheets.results_headers", "must be >= 0")
	}
	if c.RefreshInterval <= 0 {
		return apperrors.NewConfigError("refresh.interval", "must be positive")
	}

	required := []struct{ field, keyword string }{
		{"contest.columns.name", c.ContestColumns.Name},
		{"contest.columns.score", c.ContestColumns.Score},
		{"results.columns.question_id", c.ResultsColumns.QuestionID},
		{"results.columns.prompt", c.ResultsColumns.Prompt},
	}
	for _, r := range required {
		if strings.TrimSpace(r.keyword) == "" {
			return apperrors.NewConfigError(r.field, "keyword must not be empty")
		}
	}

	return nil
}

// Reconcile paramètres du rapprochement
func (c *Config) Reconcile() reconcile.Config {
	return reconcile.Config{
		Contest:            c.ContestColumns,
		Results:            c.ResultsColumns,
		EliminatedValue:    c.EliminatedValue,
		ExcludedCategories: c.ExcludedCategories,
	}
}

// ContestRef référence de la feuille du concours
func (c *Config) ContestRef() sheets.TableRef {
	return sheets.TableRef{Name: "contest", Gid: c.ContestGid, Sheet: c.ContestSheet, HeaderRows: c.ContestHeaders}
}

// ResultsRef référence de la feuille des résultats
func (c *Config) ResultsRef() sheets.TableRef {
	return sheets.TableRef{Name: "results", Gid: c.ResultsGid, Sheet: c.ResultsSheet, HeaderRows: c.ResultsHeaders}
}

// Gviz configuration du client Google Sheets
func (c *Config) Gviz() sheets.GvizConfig {
	return sheets.GvizConfig{BaseURL: c.SheetsBaseURL, SheetID: c.SheetID, Timeout: c.SheetsTimeout}
}

// Logging options du logger
func (c *Config) Logging() logging.Options {
	opts := logging.DefaultOptions()
	opts.Level = c.LogLevel
	opts.Format = c.LogFormat
	opts.Output = c.LogOutput
	return opts
}

// Source source des feuilles : classeur local si sheets.xlsx_path est
// renseigné, Google Sheets sinon
func (c *Config) Source(logger *zerolog.Logger) sheets.Source {
	if c.UsesWorkbook() {
		return sheets.NewXLSXSource(c.XLSXPath, logger)
	}
	return sheets.NewGvizClient(c.Gviz(), logger)
}
