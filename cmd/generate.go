package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/abhisek/umlgen/internal/exercise"
	"github.com/abhisek/umlgen/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one exercise and print it",
	Example: `  umlgen generate --model gemini-2.5-flash --difficulty Easy --goal LIS --length Short
  umlgen generate --model gpt-4 --goal MUL --evaluate --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params := exercise.ParameterSet{}
		params.Model, _ = cmd.Flags().GetString("model")
		params.ExerciseType, _ = cmd.Flags().GetString("type")
		params.Difficulty, _ = cmd.Flags().GetString("difficulty")
		params.StudyGoal, _ = cmd.Flags().GetString("goal")
		params.Length, _ = cmd.Flags().GetString("length")
		evaluate, _ := cmd.Flags().GetBool("evaluate")
		asJSON, _ := cmd.Flags().GetBool("json")
		noStore, _ := cmd.Flags().GetBool("no-store")

		// Reject bad input before touching providers or the database.
		if err := params.Validate(); err != nil {
			return err
		}

		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.service.Generate(cmd.Context(), params, evaluate)
		if err != nil {
			return err
		}

		id := ""
		if !noStore {
			rec, err := res.Record()
			if err != nil {
				return err
			}
			if err := d.store.GenerationRepo().Save(cmd.Context(), rec); err != nil {
				return fmt.Errorf("store generation: %w", err)
			}
			id = rec.ID
		}

		if asJSON {
			return printJSON(res)
		}
		printResult(res, id)
		return nil
	},
}

func printResult(res *pipeline.Result, id string) {
	sep := rule(60)

	if id != "" {
		printField("ID", id)
	}
	printField("Model", res.Params.Model)
	printField("Goal", fmt.Sprintf("%s / %s / %s", res.Params.StudyGoal, res.Params.Difficulty, res.Params.Length))
	fmt.Println(sep)

	if res.Exercise == nil {
		fmt.Println("Could not parse structured output. Raw response:")
		fmt.Println(sep)
		fmt.Println(res.Raw)
		return
	}

	ex := res.Exercise
	fmt.Println(ex.Title)
	fmt.Println()
	fmt.Println("Learning objectives:")
	for _, o := range ex.LearningObjectives {
		fmt.Printf("  - %s\n", o)
	}
	fmt.Println()
	fmt.Println(ex.ProblemDescription)

	if res.Evaluation == nil {
		if res.Evaluate {
			fmt.Println(sep)
			fmt.Println("Evaluation unavailable.")
		}
		return
	}

	ev := res.Evaluation
	fmt.Println(sep)
	fmt.Printf("Evaluation (%s): %.2f / 10\n", res.EvaluationModel, ev.FullScore)
	dims := make([]string, 0, len(ev.Dimensions))
	for d := range ev.Dimensions {
		dims = append(dims, d)
	}
	sort.Strings(dims)
	for _, d := range dims {
		fmt.Printf("  %-2s %.2f\n", d, ev.Dimensions[d])
	}
}

func init() {
	generateCmd.Flags().StringP("model", "m", "", "Model identifier (see 'umlgen models')")
	generateCmd.Flags().StringP("type", "t", exercise.ClassDiagram, "Exercise type")
	generateCmd.Flags().StringP("difficulty", "d", "Medium", "Difficulty: Easy, Medium or Hard")
	generateCmd.Flags().StringP("goal", "g", "", "Study goal code (see 'umlgen models --goals')")
	generateCmd.Flags().StringP("length", "l", "Medium", "Length: Short, Medium or Long")
	generateCmd.Flags().BoolP("evaluate", "e", false, "Score the exercise against the rubric")
	generateCmd.Flags().Bool("json", false, "Print the API response shape as JSON")
	generateCmd.Flags().Bool("no-store", false, "Do not save the generation to the database")
	_ = generateCmd.MarkFlagRequired("model")
	_ = generateCmd.MarkFlagRequired("goal")
}
