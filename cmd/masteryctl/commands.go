package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wordmastery/internal/catalog"
	"wordmastery/internal/config"
	"wordmastery/internal/database"
	"wordmastery/internal/logging"
	"wordmastery/internal/mastery"
	"wordmastery/internal/repository"
	"wordmastery/internal/security"
	"wordmastery/internal/service"
)

// app holds what every subcommand needs. It is built in PersistentPreRunE.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *database.DB
	sessions *repository.SessionRepository
	store    *repository.MasteryRepository
	vocab    *repository.VocabularyRepository
}

func (a *app) open(cmd *cobra.Command, args []string) error {
	a.cfg = config.Load()

	logger, err := logging.New(logging.Options{Level: a.cfg.LogLevel, File: a.cfg.LogFile})
	if err != nil {
		return err
	}
	a.logger = logger

	db, err := database.InitializeWithConfig(a.cfg)
	if err != nil {
		return err
	}
	a.db = db

	// Run migrations to ensure schema is up to date
	if _, err := db.RunMigrations(cmd.Context()); err != nil {
		return err
	}

	a.sessions = repository.NewSessionRepository(db)
	a.vocab = repository.NewVocabularyRepository(db)
	a.store = repository.NewMasteryRepository(db, mastery.NewCalculator(mastery.Curve{PromotionStreak: a.cfg.PromotionStreak}))
	return nil
}

func (a *app) close(cmd *cobra.Command, args []string) error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "masteryctl",
		Short: "Administer the word mastery store",
		Long: `masteryctl imports vocabulary catalogs, exports and restores mastery data,
runs the session reaper once and prints a student's weak-words analysis.

Database settings come from DATABASE_TYPE, DB_PATH and DATABASE_URL.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.open,
		PersistentPostRunE: a.close,
	}

	rootCmd.AddCommand(
		newImportVocabCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newReapCmd(a),
		newAnalyzeCmd(a),
		newTokenCmd(),
	)
	return rootCmd
}

func newImportVocabCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import-vocab [file]",
		Short: "Import a vocabulary catalog (.xlsx, .csv or .yaml)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := catalog.ImportFile(cmd.Context(), a.vocab, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed %d rows: %d imported, %d skipped\n", result.Processed, result.Imported, result.Skipped)
			for _, msg := range result.Errors {
				fmt.Fprintf(out, "  %s\n", msg)
			}
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var output, studentID string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export mastery data to a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Generate default filename if not provided
			if output == "" {
				output = fmt.Sprintf("mastery_%s.json", time.Now().Format("20060102_150405"))
			}
			if dir := filepath.Dir(output); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer f.Close()

			exporter := service.NewExportService(a.vocab, a.sessions, a.store, a.logger)
			data, err := exporter.Export(cmd.Context(), studentID, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sessions, %d attempts and %d mastery records to %s\n",
				len(data.Sessions), len(data.Attempts), len(data.Mastery), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: mastery_YYYYMMDD_HHMMSS.json)")
	cmd.Flags().StringVar(&studentID, "student", "", "Only export this student's data")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Import an export file. Existing rows are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()

			stats, err := service.NewExportService(a.vocab, a.sessions, a.store, a.logger).Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d vocabulary items, %d sessions, %d attempts and %d mastery records\n",
				stats.Vocabulary, stats.Sessions, stats.Attempts, stats.Mastery)
			return nil
		},
	}
}

func newReapCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reap",
		Short: "Close inactive sessions once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions := service.NewSessionService(a.sessions, a.store, a.logger, service.SessionOptions{
				InactivityWindow: a.cfg.InactivityWindow,
			})
			n, err := sessions.ReapInactive(cmd.Context(), time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Closed %d inactive sessions\n", n)
			return nil
		},
	}
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var groupBy string

	cmd := &cobra.Command{
		Use:   "analyze [studentId]",
		Short: "Print a student's weak-words analysis as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analysis := service.NewAnalysisService(a.store, a.vocab, mastery.NewGenerator(a.cfg.RecommendationWordLimit), a.logger, 0)

			var (
				v   interface{}
				err error
			)
			if groupBy != "" {
				v, err = analysis.Categories(cmd.Context(), args[0], mastery.GroupBy(groupBy))
			} else {
				v, err = analysis.WeakWordsAnalysis(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(v)
		},
	}
	cmd.Flags().StringVar(&groupBy, "categories", "", "Print the category roll-up instead, grouped by category or subcategory")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		role string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token [subject]",
		Short: "Sign an API token with JWT_SECRET, for local testing",
		Args:  cobra.ExactArgs(1),
		// no database needed
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := config.Load().JWTSecret
			if secret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			token, err := security.NewTokenVerifier(secret).Sign(args[0], role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "Token role, e.g. teacher")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}
