package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/extract"
	"resume-builder/internal/llm"
	"resume-builder/internal/shared/config"
	"resume-builder/resume/importer"
	"resume-builder/resume/store"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import parsed resume data into a document",
	Long: "Imports a parsed resume payload (the JSON shape returned by the AI parser) into a fresh document. " +
		"With --file the payload is produced by extracting and parsing a PDF, DOCX or TXT resume with the configured AI provider.",
	RunE: runImport,
}

var (
	importInput  string
	importFile   string
	importOutput string
)

func init() {
	importCmd.Flags().StringVarP(&importInput, "in", "i", "", "Path to a parsed resume JSON payload (- for stdin)")
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Path to a resume file to extract and parse")
	importCmd.Flags().StringVarP(&importOutput, "out", "o", "", "Output document, .yaml or .json (default JSON on stdout)")
	importCmd.MarkFlagsOneRequired("in", "file")
	importCmd.MarkFlagsMutuallyExclusive("in", "file")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var (
		payload json.RawMessage
		err     error
	)
	if importFile != "" {
		payload, err = parseFile(ctx, importFile)
	} else {
		payload, err = readPayload(importInput, cmd.InOrStdin())
	}
	if err != nil {
		return err
	}

	st := store.New()
	report, err := importer.Import(ctx, st, payload, uuid.NewString)
	if err != nil {
		return fmt.Errorf("failed to import: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "imported %d work experience, %d projects, %d education, %d certifications\n",
		report.WorkExperience, report.Projects, report.Education, report.Certifications)

	return writeDocument(importOutput, st.Document(), cmd.OutOrStdout())
}

func readPayload(path string, stdin io.Reader) (json.RawMessage, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return raw, nil
}

func parseFile(ctx context.Context, path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	mimeType := extract.DetectType("", path, data)
	if mimeType == "" {
		return nil, extract.ErrUnsupportedType
	}
	text, err := extract.ExtractTextFromBytes(ctx, data, mimeType, path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	completer, closeFn, err := bootstrap.NewCompleter(ctx, config.Load())
	if err != nil {
		return nil, err
	}
	if completer == nil {
		return nil, llm.ErrNotConfigured
	}
	if closeFn != nil {
		defer closeFn()
	}
	return llm.NewService(completer).Parse(ctx, text, path)
}
