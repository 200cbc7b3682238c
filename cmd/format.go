package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

func rule(width int) string {
	return strings.Repeat("─", width)
}

// printSection prints a titled block framed by separator lines.
func printSection(title, body string) {
	sep := rule(60)
	fmt.Println()
	fmt.Println(sep)
	fmt.Println(title)
	fmt.Println(sep)
	if body == "" {
		fmt.Println("(none)")
		return
	}
	fmt.Println(body)
}

// printField prints one aligned "Label: value" header line.
func printField(label string, value any) {
	fmt.Printf("%-10s %v\n", label+":", value)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func localTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
