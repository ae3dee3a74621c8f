package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/skillquest/internal/domain"
	"github.com/felixgeelhaar/skillquest/internal/engine"
	"github.com/felixgeelhaar/skillquest/internal/rules"
)

// planInput is the file read by `skillquest plan`
type planInput struct {
	Scores  map[string]any `json:"scores"`
	Signals map[string]any `json:"signals"`
}

// planOutput mirrors what the API stores for an evaluation and its plan
type planOutput struct {
	DomainScores map[string]int         `json:"domainScores"`
	Levels       map[string]rules.Level `json:"levels"`
	Items        []engine.Item          `json:"items"`
	Advice       []string               `json:"advice"`
}

func newPlanCmd() *cobra.Command {
	var rulesPath, inputPath, outPath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a plan offline from scores and signals",
		Long: `Evaluates a JSON file of the form {"scores": {...}, "signals": {...}}
against a rule document and prints the resulting plan as JSON. Without
--rules the bundled document is used. Use "-" to read the input from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := loadRules(rulesPath)
			if err != nil {
				return err
			}

			in, err := readPlanInput(cmd.InOrStdin(), inputPath)
			if err != nil {
				return err
			}

			out := buildPlan(in, r)

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "Path to the rule document (default: bundled)")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Path to the scores/signals JSON file, or - for stdin (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the plan to this file instead of stdout")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func loadRules(path string) (*rules.Rules, error) {
	if path == "" {
		return rules.Default(), nil
	}
	return rules.Load(path)
}

func readPlanInput(stdin io.Reader, path string) (*planInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var in planInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	if in.Scores == nil {
		return nil, fmt.Errorf("input has no scores")
	}
	return &in, nil
}

// buildPlan runs the same evaluate-then-plan pipeline as the API
func buildPlan(in *planInput, r *rules.Rules) planOutput {
	scores := engine.NormalizeScores(in.Scores)
	scores[domain.OverallKey] = engine.WeightedOverall(scores, r.Weights)

	e := domain.Evaluation{DomainScores: scores}
	built := engine.Build(e.PlanScores(), in.Signals, r)

	return planOutput{
		DomainScores: scores,
		Levels:       built.Levels,
		Items:        nonNil(built.Items),
		Advice:       nonNil(built.Advice),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
