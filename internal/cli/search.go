package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chatgrep/internal/domain"
	"chatgrep/internal/search"
)

var (
	flagMode          string
	flagMax           int
	flagCaseSensitive bool
	flagSpeaker       string
	flagSince         string
	flagUntil         string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search conversations non-interactively",
	Long: `Search all conversations for a query and print the ranked matches.

Examples:
  chatgrep search "error handling"
  chatgrep search --mode regex "func \w+Handler"
  chatgrep search --speaker human --since 2026-01-01 decorators`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&flagMode, "mode", "smart", "matching strategy: smart, exact, regex, semantic")
	searchCmd.Flags().IntVar(&flagMax, "max", 0, "maximum results (default from config)")
	searchCmd.Flags().BoolVar(&flagCaseSensitive, "case-sensitive", false, "match case exactly")
	searchCmd.Flags().StringVar(&flagSpeaker, "speaker", "", "only messages by this speaker: human or assistant")
	searchCmd.Flags().StringVar(&flagSince, "since", "", "only messages on or after this date (2006-01-02)")
	searchCmd.Flags().StringVar(&flagUntil, "until", "", "only messages on or before this date (2006-01-02)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.scanAndWait(ctx); err != nil {
		return err
	}

	opts, err := buildSearchOptions(a)
	if err != nil {
		return err
	}

	query := args[0]
	ranker := search.NewRanker(a.semantic, a.logger)

	var results []search.Result
	if opts.Mode == search.ModeSmart {
		composer := search.NewComposer(ranker, a.semantic, a.logger)
		results, err = composer.Compose(ctx, query, a.store, opts)
	} else {
		if opts.Mode == search.ModeSemantic {
			a.indexSemantic(ctx)
			if a.semantic == nil {
				return fmt.Errorf("semantic search is not available; enable it in the config and set the API key")
			}
		}
		results, err = ranker.Rank(ctx, query, a.store, opts)
		if err == nil && len(results) > maxOrDefault(opts.MaxResults) {
			results = results[:maxOrDefault(opts.MaxResults)]
		}
	}
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, r := range results {
		printResult(r)
	}
	return nil
}

func buildSearchOptions(a *app) (search.Options, error) {
	opts := a.searchOptions()
	if flagMax > 0 {
		opts.MaxResults = flagMax
	}
	if flagCaseSensitive {
		opts.CaseSensitive = true
	}

	switch flagMode {
	case "smart":
		opts.Mode = search.ModeSmart
	case "exact":
		opts.Mode = search.ModeExact
	case "regex":
		opts.Mode = search.ModeRegex
	case "semantic":
		opts.Mode = search.ModeSemantic
	default:
		return opts, fmt.Errorf("unknown mode %q", flagMode)
	}

	switch flagSpeaker {
	case "":
	case "human":
		opts.Speaker = domain.SpeakerHuman
	case "assistant":
		opts.Speaker = domain.SpeakerAssistant
	default:
		return opts, fmt.Errorf("unknown speaker %q", flagSpeaker)
	}

	var err error
	if opts.DateFrom, err = parseDateFlag(flagSince); err != nil {
		return opts, err
	}
	if opts.DateTo, err = parseDateFlag(flagUntil); err != nil {
		return opts, err
	}
	return opts, nil
}

func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want 2006-01-02", value)
	}
	return &t, nil
}

func maxOrDefault(max int) int {
	if max <= 0 {
		return search.DefaultMaxResults
	}
	return max
}

func printResult(r search.Result) {
	date := "unknown"
	if r.Timestamp != nil {
		date = r.Timestamp.Format("2006-01-02")
	}
	project := filepath.Base(filepath.Dir(r.Path))
	snippet := strings.ReplaceAll(r.MatchedContent, "\n", " ")
	if runes := []rune(snippet); len(runes) > 120 {
		snippet = string(runes[:117]) + "..."
	}
	fmt.Printf("%s  %-20s %3d%%  %s\n", date, project, int(r.Score*100), snippet)
}
