package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/umlgen/internal/llm"
	"github.com/abhisek/umlgen/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded provider calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent provider calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		model, _ := cmd.Flags().GetString("model")
		failed, _ := cmd.Flags().GetBool("failed")
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{
			Limit:   limit,
			Purpose: purpose,
			Model:   model,
		})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if failed {
			events = failedOnly(events)
		}

		if asJSON {
			return printJSON(events)
		}
		if len(events) == 0 {
			fmt.Println("No provider calls recorded.")
			return nil
		}
		printEventTable(events)
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the request and response of one provider call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid event id %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(context.Background(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		printField("ID", e.ID)
		printField("Time", localTime(e.Timestamp))
		printField("Provider", e.Provider)
		printField("Model", e.Model)
		printField("Purpose", e.Purpose)
		printField("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens))
		printField("Latency", fmt.Sprintf("%dms", e.LatencyMs))
		printField("Success", e.Success)
		if e.ErrorMessage != "" {
			printField("Error", e.ErrorMessage)
		}

		printSection("REQUEST", e.RequestBody)
		printSection("RESPONSE", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println("No provider calls recorded.")
			return nil
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		printPurposeUsage(byPurpose)
		if len(byModel) > 0 {
			fmt.Println()
			printModelCost(byModel)
		}
		return nil
	},
}

func failedOnly(events []store.LLMRequestEventRecord) []store.LLMRequestEventRecord {
	out := events[:0]
	for _, e := range events {
		if !e.Success {
			out = append(out, e)
		}
	}
	return out
}

func printEventTable(events []store.LLMRequestEventRecord) {
	const row = "%-5v  %-19s  %-13s  %-24s  %6v  %6v  %7v  %s\n"
	fmt.Printf(row, "ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
	fmt.Println(rule(96))
	for _, e := range events {
		fmt.Printf(row, e.ID, localTime(e.Timestamp), e.Purpose, truncate(e.Model, 24),
			e.InputTokens, e.OutputTokens, e.LatencyMs, mark(e.Success))
	}
}

func printPurposeUsage(stats []store.LLMUsageStats) {
	fmt.Println("Calls by purpose")
	fmt.Println(rule(72))
	fmt.Printf("%-16s  %6s  %10s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Total", "Avg ms")
	fmt.Println(rule(72))

	var sum store.LLMUsageStats
	for _, st := range stats {
		fmt.Printf("%-16s  %6d  %10d  %10d  %10d  %8.0f\n",
			st.Purpose, st.Calls, st.InputTokens, st.OutputTokens, st.InputTokens+st.OutputTokens, st.AvgLatencyMs)
		sum.Calls += st.Calls
		sum.InputTokens += st.InputTokens
		sum.OutputTokens += st.OutputTokens
	}
	fmt.Println(rule(72))
	fmt.Printf("%-16s  %6d  %10d  %10d  %10d\n",
		"all", sum.Calls, sum.InputTokens, sum.OutputTokens, sum.InputTokens+sum.OutputTokens)
}

func printModelCost(usage []store.LLMModelUsage) {
	fmt.Println("Estimated cost (USD)")
	fmt.Println(rule(72))
	fmt.Printf("%-32s  %6s  %10s  %10s  %9s\n", "Model", "Calls", "Input", "Output", "Cost")
	fmt.Println(rule(72))

	var total float64
	var unpriced []string
	for _, mu := range usage {
		cost := "?"
		if price := llm.LookupCost(mu.Model); price != nil {
			c := price.Cost(mu.InputTokens, mu.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, mu.Model)
		}
		fmt.Printf("%-32s  %6d  %10d  %10d  %9s\n",
			truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, cost)
	}
	fmt.Println(rule(72))

	label := "all"
	if len(unpriced) > 0 {
		label = "all (partial)"
	}
	fmt.Printf("%-32s  %6s  %10s  %10s  %9s\n", label, "", "", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Printf("\nNo price known for: %s\n", strings.Join(unpriced, ", "))
	}
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose ("+llm.PurposeGenerate+" or "+llm.PurposeEvaluate+")")
	llmListCmd.Flags().StringP("model", "m", "", "Filter by model")
	llmListCmd.Flags().Bool("failed", false, "Only show failed calls")
	llmListCmd.Flags().Bool("json", false, "Print events as JSON")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
