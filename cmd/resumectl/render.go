package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a resume to HTML",
	Long:  "Renders a resume document with one template, or with every renderable template when --all is set.",
	RunE:  runRender,
}

var (
	renderInput    string
	renderTemplate string
	renderOutput   string
	renderAll      bool
	renderOutDir   string
)

func init() {
	renderCmd.Flags().StringVarP(&renderInput, "in", "i", "", "Path to resume YAML or JSON (required, - for stdin)")
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", string(model.DefaultTemplate), "Template id")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Output HTML file (default stdout)")
	renderCmd.Flags().BoolVar(&renderAll, "all", false, "Render every renderable template")
	renderCmd.Flags().StringVar(&renderOutDir, "out-dir", "out", "Directory for --all output")

	if err := renderCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	doc, err := readDocument(renderInput, cmd.InOrStdin())
	if err != nil {
		return err
	}

	if !renderAll {
		id := model.TemplateID(renderTemplate)
		if resolved := render.Resolve(id); resolved != id {
			fmt.Fprintf(cmd.ErrOrStderr(), "template %q is not renderable, using %q\n", id, resolved)
		}
		html, err := render.HTML(id, doc)
		if err != nil {
			return fmt.Errorf("failed to render: %w", err)
		}
		return writeOutput(renderOutput, html, cmd.OutOrStdout())
	}

	written, err := renderEvery(cmd.Context(), doc, renderOutDir)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

// renderEvery writes <dir>/<template>.html for each renderable template and
// returns the paths in catalog order.
func renderEvery(ctx context.Context, doc model.Document, dir string) ([]string, error) {
	var ids []model.TemplateID
	for _, entry := range render.Catalog() {
		if render.Renderable(entry.ID) {
			ids = append(ids, entry.ID)
		}
	}

	paths := make([]string, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			html, err := render.HTML(id, doc)
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", id, err)
			}
			path := filepath.Join(dir, string(id)+".html")
			if err := writeOutput(path, html, nil); err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
