package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/umlgen/internal/store"
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Inspect stored generations",
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent generations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		model, _ := cmd.Flags().GetString("model")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		recs, err := s.GenerationRepo().List(context.Background(), store.QueryOpts{Limit: limit, Model: model})
		if err != nil {
			return fmt.Errorf("query generations: %w", err)
		}

		if len(recs) == 0 {
			fmt.Println("No generations found.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-20s  %-4s  %-6s  %-6s  %-6s  %s\n",
			"ID", "Created", "Model", "Goal", "Level", "Length", "Parsed", "Eval")
		fmt.Println(rule(118))

		for _, r := range recs {
			fmt.Printf("%-36s  %-19s  %-20s  %-4s  %-6s  %-6s  %-6s  %s\n",
				r.ID,
				localTime(r.CreatedAt),
				truncate(r.Model, 20),
				r.StudyGoal,
				r.Difficulty,
				r.Length,
				mark(r.Parsed),
				mark(len(r.Evaluation) > 0),
			)
		}
		return nil
	},
}

var requestsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View the prompt and response of a stored generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.GenerationRepo().Get(context.Background(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("generation %s not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("get generation: %w", err)
		}

		printField("ID", r.ID)
		printField("Time", localTime(r.CreatedAt))
		printField("Model", r.Model)
		printField("Type", r.ExerciseType)
		printField("Level", r.Difficulty)
		printField("Goal", r.StudyGoal)
		printField("Length", r.Length)
		printField("Parsed", r.Parsed)

		printSection("PROMPT", r.Prompt)
		printSection("RESPONSE", r.Response)
		if r.Evaluate {
			printSection("EVALUATION", string(r.Evaluation))
		}
		return nil
	},
}

func init() {
	requestsListCmd.Flags().IntP("limit", "n", 20, "Number of generations to show")
	requestsListCmd.Flags().StringP("model", "m", "", "Filter by model")

	requestsCmd.AddCommand(requestsListCmd, requestsViewCmd)
}
