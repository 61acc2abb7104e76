package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docrank/internal/analyze"
	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/decoder"
	"github.com/dgallion1/docrank/internal/heading"
	"github.com/dgallion1/docrank/internal/relevance"
)

var (
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "docrank",
	Short: "Document outlines and persona-ranked sections",
	Long: `docrank reads documents (PDF, DOCX, Markdown, HTML, text), recovers their
title and heading outline, and ranks the sections of a document collection
against a persona and a job to be done.

Configuration comes from environment variables, optionally loaded from a
.env file.`,
	Version:      gitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional env file to load before reading configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	rootCmd.AddCommand(serveCmd, outlineCmd, collectionsCmd, versionCmd)
}

// loadConfig reads the env file when present, then the environment.
func loadConfig() config.Config {
	_ = godotenv.Load(envFile)
	return config.Load()
}

func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", logLevel)
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})), nil
}

func newAnalyzer(cfg config.Config, log *slog.Logger) (*analyze.Analyzer, error) {
	table, err := relevance.LoadTable(cfg.PersonaTable)
	if err != nil {
		return nil, fmt.Errorf("persona table: %w", err)
	}
	return analyze.New(table, analyze.Options{
		Decoder:           decoder.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		MaxConcurrentDocs: cfg.MaxConcurrentDocs,
		ExtractedLimit:    cfg.ExtractedSectionsLimit,
		SubsectionLimit:   cfg.SubsectionLimit,
		Classifier:        heading.Classifier{PositionOverrides: cfg.PositionOverrides},
	}, log), nil
}
