package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"resume-builder/internal/export"
	"resume-builder/resume/model"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a resume to PDF or PNG",
	Long:  "Renders a resume with a template and prints it to an A4 PDF or a PNG screenshot using headless Chrome.",
	RunE:  runExport,
}

var (
	exportInput    string
	exportTemplate string
	exportFormat   string
	exportOutput   string
	exportChrome   string
	exportTimeout  time.Duration
)

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "in", "i", "", "Path to resume YAML or JSON (required, - for stdin)")
	exportCmd.Flags().StringVarP(&exportTemplate, "template", "t", string(model.DefaultTemplate), "Template id")
	exportCmd.Flags().StringVar(&exportFormat, "format", string(export.FormatPDF), "Output format: pdf or png")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Output file (default resume.<format>)")
	exportCmd.Flags().StringVar(&exportChrome, "chrome", os.Getenv("CHROME_PATH"), "Path to the Chrome executable")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", time.Minute, "Export timeout")

	if err := exportCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	doc, err := readDocument(exportInput, cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), exportTimeout)
	defer cancel()

	svc := export.NewService(export.NewChrome(exportChrome))
	out, used, err := svc.Export(ctx, model.TemplateID(exportTemplate), doc, format)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	path := exportOutput
	if path == "" {
		path = format.FileName()
	}
	if err := writeOutput(path, out, cmd.OutOrStdout()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s, %d bytes)\n", path, used, len(out))
	return nil
}
