package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/spendlens/spendlens/internal/advisor"
	"github.com/spendlens/spendlens/internal/demo"
	"github.com/spendlens/spendlens/internal/domain"
	"github.com/spendlens/spendlens/internal/ingest"
	"github.com/spendlens/spendlens/internal/ledger"
	"github.com/spendlens/spendlens/internal/logger"
	"github.com/spendlens/spendlens/internal/treemap"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(log)
	case "recommend":
		runRecommend(log)
	case "treemap":
		runTreemap(log)
	case "demo":
		runDemo(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("SpendLens CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze    Normalize a CSV file and print its spend summary")
	fmt.Println("  recommend  Print savings recommendations for a goal")
	fmt.Println("  treemap    Print treemap tiles for a CSV file's categories")
	fmt.Println("  demo       Print the demo dataset's spend summary")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// summarizeFile loads, normalizes and filters a local CSV file.
func summarizeFile(log zerolog.Logger, path string, filters domain.Filters) domain.Summary {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to open CSV file")
	}
	defer f.Close()

	rows, err := ingest.ReadCSV(f)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to parse CSV file")
	}

	txs := ingest.FromRawRows(rows, ingest.DefaultRawOptions())
	skipped := len(rows) - len(txs)
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("Some rows were invalid and skipped")
	}

	return ledger.Summarize(ledger.ApplyFilters(txs, filters))
}

func printJSON(log zerolog.Logger, v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode output")
	}
}

func runAnalyze(log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	file := fs.String("file", "", "Path to a transactions CSV file")
	keepTransfers := fs.Bool("keep-transfers", false, "Keep transfer-like transactions")
	keepRefunds := fs.Bool("keep-refunds", false, "Keep refunds (negative amounts)")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	summary := summarizeFile(log, *file, domain.Filters{
		ExcludeTransfers: !*keepTransfers,
		ExcludeRefunds:   !*keepRefunds,
	})
	printJSON(log, summary)
}

func runRecommend(log zerolog.Logger) {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	file := fs.String("file", "", "Path to a transactions CSV file")
	goalType := fs.String("goal", "save_by_date", "Goal type: save_by_date or monthly_cap")
	saveAmount := fs.Float64("save-amount", 0, "Amount to save (save_by_date)")
	byDate := fs.String("by-date", "", "Target date YYYY-MM-DD (save_by_date)")
	category := fs.String("category", "", "Category to cap (monthly_cap)")
	capAmount := fs.Float64("cap-amount", 0, "Monthly cap amount (monthly_cap)")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	summary := summarizeFile(log, *file, domain.Filters{
		ExcludeTransfers: true,
		ExcludeRefunds:   true,
	})

	goal := domain.Goal{
		GoalType:   domain.GoalType(*goalType),
		SaveAmount: *saveAmount,
		ByDate:     *byDate,
		Category:   *category,
		CapAmount:  *capAmount,
	}
	recs := advisor.Recommend(summary, goal)

	printJSON(log, map[string]any{
		"recommendations": recs,
		"scenario":        advisor.Simulate(summary, recs),
	})
}

func runTreemap(log zerolog.Logger) {
	fs := flag.NewFlagSet("treemap", flag.ExitOnError)
	file := fs.String("file", "", "Path to a transactions CSV file")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	summary := summarizeFile(log, *file, domain.Filters{
		ExcludeTransfers: true,
		ExcludeRefunds:   true,
	})
	printJSON(log, treemap.BuildFromCategories(summary.ByCategory))
}

func runDemo(log zerolog.Logger) {
	txs := ledger.ApplyFilters(demo.Transactions(), domain.Filters{
		ExcludeTransfers: true,
		ExcludeRefunds:   true,
	})
	printJSON(log, ledger.Summarize(txs))
}
