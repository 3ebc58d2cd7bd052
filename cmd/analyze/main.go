package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/macrolens/nutrilog/internal/domain"
	"github.com/macrolens/nutrilog/internal/infrastructure/lexicon"
	"github.com/macrolens/nutrilog/internal/infrastructure/reference"
	"github.com/macrolens/nutrilog/internal/usecase"
	"github.com/samber/lo"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run analyzes meal text given as arguments, or read from stdin when none are given
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	var (
		tablePath   = fs.String("table", "data/foods.csv", "Reference table (CSV or SQLite)")
		format      = fs.String("format", "", "Reference format: csv or sqlite (default: from extension)")
		dbTable     = fs.String("db-table", reference.DefaultTable, "SQLite table name")
		lexiconPath = fs.String("lexicon", "", "Lexicon YAML file (optional)")
		target      = fs.Int("target", 2000, "Daily calorie target")
		asJSON      = fs.Bool("json", false, "Print the analysis as JSON")
		debug       = fs.Bool("debug", false, "Log matching decisions")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	text := strings.Join(fs.Args(), " ")
	if text == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	source, err := reference.NewSource(*format, *tablePath, *dbTable)
	if err != nil {
		return err
	}

	lex, err := lexicon.Load(*lexiconPath)
	if err != nil {
		return err
	}

	catalog := usecase.NewCatalog(source, lex, usecase.MatchConfig{EnableDebugLogging: *debug})
	if _, err := catalog.Reload(ctx); err != nil {
		return err
	}

	service := usecase.NewAnalysisService(catalog, nil, usecase.AnalysisServiceConfig{
		DefaultTargetCalories: *target,
		EnableDebugLogging:    *debug,
	})

	analysis, err := service.Analyze(ctx, &domain.AnalyzeRequest{Text: text, TargetCalories: *target})
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	return printAnalysis(stdout, analysis)
}

// printAnalysis writes the per-food table, totals, gaps, suggestions and unresolved fragments
func printAnalysis(w io.Writer, analysis *domain.Analysis) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "FOOD\tQUANTITY\tKCAL\tPROTEIN\tCARBS\tFAT")
	for _, r := range analysis.Records {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\t%.1f\t%.1f\n", r.Food, r.Quantity, r.Calories, r.Protein, r.Carbs, r.Fat)
	}
	t := analysis.Totals
	fmt.Fprintf(tw, "TOTAL\t\t%.1f\t%.1f\t%.1f\t%.1f\n", t.Calories, t.Protein, t.Carbs, t.Fat)
	if err := tw.Flush(); err != nil {
		return err
	}

	g := analysis.Gaps
	fmt.Fprintf(w, "\nTarget %d kcal: %.1f kcal remaining, protein +%.1fg, carbs +%.1fg, fat +%.1fg\n",
		g.TargetCalories, g.Calories, g.Protein, g.Carbs, g.Fat)
	fmt.Fprintf(w, "Macro split: protein %.1f%%, carbs %.1f%%, fat %.1f%%\n", g.ProteinPct, g.CarbsPct, g.FatPct)
	if len(g.Priorities) > 0 {
		fmt.Fprintf(w, "Priorities: %s\n", strings.Join(g.Priorities, ", "))
	}

	if len(analysis.MealPlan) > 0 {
		fmt.Fprintln(w, "\nSuggestions:")
		for _, line := range analysis.MealPlan {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	if len(analysis.Unresolved) > 0 {
		fragments := lo.Map(analysis.Unresolved, func(u domain.UnresolvedFragment, _ int) string {
			return u.Text
		})
		fmt.Fprintf(w, "Unresolved: %s\n", strings.Join(fragments, "; "))
	}

	return nil
}
