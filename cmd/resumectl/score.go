package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resume-builder/resume/ats"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume for ATS readiness",
	Long:  "Scores a resume document against the ATS rubric and prints the score with improvement suggestions.",
	RunE:  runScore,
}

var (
	scoreInput string
	scoreRole  string
	scoreMin   int
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreInput, "in", "i", "", "Path to resume YAML or JSON (required, - for stdin)")
	scoreCmd.Flags().StringVarP(&scoreRole, "role", "r", "", "Target role to check the summary against")
	scoreCmd.Flags().IntVar(&scoreMin, "min", 0, "Fail when the score is below this value")

	if err := scoreCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	doc, err := readDocument(scoreInput, cmd.InOrStdin())
	if err != nil {
		return err
	}

	result := ats.Score(doc, scoreRole)
	if err := printJSON(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if scoreMin > 0 && result.Score < scoreMin {
		return fmt.Errorf("score %d is below minimum %d", result.Score, scoreMin)
	}
	return nil
}
