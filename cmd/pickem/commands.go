package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pickem-tracker/internal/auth"
	"pickem-tracker/internal/board"
	"pickem-tracker/internal/config"
	"pickem-tracker/internal/logging"
	"pickem-tracker/internal/models"
	"pickem-tracker/internal/output"
	"pickem-tracker/internal/reconcile"
	"pickem-tracker/internal/scoring"
	"pickem-tracker/internal/styles"
)

type globalFlags struct {
	configFile string
	logLevel   string
	format     string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:          "pickem",
		Short:        "Pick'em scoreboard CLI",
		Long:         "pickem loads the contest and results sheets and prints the scoreboard or a participant's picks.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default ./pickem.yaml)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVarP(&flags.format, "format", "o", "", "output format: table, json, yaml (default: table on a terminal, json otherwise)")

	root.AddCommand(newScoreboardCmd(flags), newExportCmd(flags), newHashTokenCmd())
	return root
}

func newScoreboardCmd(flags *globalFlags) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "scoreboard",
		Short: "Print the leaderboard, or one participant's summary and picks",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(flags.format)
			if err != nil {
				return err
			}

			ds, err := loadDataset(cmd, flags)
			if err != nil {
				return err
			}

			format = output.DetectFormat(format)
			if name == "" {
				return output.Write(cmd.OutOrStdout(), format, output.ScoreboardTable(scoring.BuildScoreboard(ds, "")))
			}

			view, err := scoring.BuildParticipantView(ds, name, styles.New(styles.NewStore(), nil))
			if err != nil {
				return fmt.Errorf("%w: %q", err, name)
			}
			return output.Write(cmd.OutOrStdout(), format, output.ParticipantTable(*view))
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "participant to show")
	return cmd
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the reconciled dataset as JSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(flags.format)
			if err != nil {
				return err
			}
			if format == output.FormatTable || format == "" {
				format = output.FormatJSON
			}

			ds, err := loadDataset(cmd, flags)
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), format, ds)
		},
	}
}

func newHashTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-token [token]",
		Short: "Print the bcrypt hash to use as admin.token_hash",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				token = strings.TrimSpace(line)
			}

			hash, err := auth.HashToken(token)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// loadDataset charge les deux feuilles une fois, sans persistance
func loadDataset(cmd *cobra.Command, flags *globalFlags) (*models.Dataset, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, err
	}

	opts := cfg.Logging()
	opts.Level = flags.logLevel
	opts.Output = "stderr"
	logger := logging.New(opts)

	manager := newManager(cfg, &logger)
	snap, err := manager.Reload(cmd.Context())
	if err != nil {
		return nil, err
	}
	return snap.Dataset, nil
}

func newManager(cfg *config.Config, logger *zerolog.Logger) *board.Manager {
	return board.NewManager(board.Options{
		Source:     cfg.Source(logger),
		Contest:    cfg.ContestRef(),
		Results:    cfg.ResultsRef(),
		Reconciler: reconcile.New(cfg.Reconcile(), logger),
		Interval:   cfg.RefreshInterval,
		Logger:     logger,
	})
}
