package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/umlgen/internal/exercise"
	"github.com/abhisek/umlgen/internal/rubric"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List selectable models and the exercise catalogs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("%-24s  %-11s  %-24s  %s\n", "Model", "Kind", "Upstream", "Available")
		fmt.Println(rule(72))
		for _, m := range cfg.LLM.Models {
			upstream := m.Upstream
			if upstream == "" {
				upstream = m.ID
			}
			ok := "✓"
			if !cfg.LLM.Configured(m.Kind) {
				ok = "✗ no credentials"
			}
			fmt.Printf("%-24s  %-11s  %-24s  %s\n", truncate(m.ID, 24), m.Kind, truncate(upstream, 24), ok)
		}

		if goals, _ := cmd.Flags().GetBool("goals"); goals {
			fmt.Println()
			fmt.Println("Study goals")
			fmt.Println(rule(72))
			for _, g := range exercise.StudyGoals() {
				fmt.Printf("%-4s %s\n     %s\n", g.Code, g.Name, g.Description)
			}
		}

		if rub, _ := cmd.Flags().GetBool("rubric"); rub {
			fmt.Println()
			fmt.Println("Rubric (items scored 0-2, dimension = mean, full score = sum)")
			fmt.Println(rule(72))
			for _, d := range rubric.Dimensions() {
				fmt.Printf("%s  %s\n", d.Code, d.Name)
				for _, it := range d.Items {
					fmt.Printf("   %-3s %s\n", it.Code, it.Description)
				}
			}
		}
		return nil
	},
}

func init() {
	modelsCmd.Flags().Bool("goals", false, "Also list study goal codes")
	modelsCmd.Flags().Bool("rubric", false, "Also list the evaluation rubric")
}
