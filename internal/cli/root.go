package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chatgrep/internal/corpus"
	"chatgrep/internal/eventbus"
	"chatgrep/internal/export"
	"chatgrep/internal/ui"
	"chatgrep/internal/ui/menu"
)

var (
	flagConfig  string
	flagLogFile string
	flagDebug   bool

	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "chatgrep",
	Short: "Extract and search locally stored chat transcripts",
	Long: `chatgrep finds conversation logs under your transcript directory and
lets you export them or search them interactively with incremental,
ranked matching.

Running without a subcommand opens the interactive menu.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInteractive,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/.config/chatgrep/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "path to log file (default ~/.config/chatgrep/chatgrep.log)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(listCmd)
}

// ExecuteContext runs the command tree under the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	// Kick off the scan in the background; the menu polls progress.
	a.bus.Publish(eventbus.ScanRequestedEvent{Roots: []string{a.cfg.LogsRoot}})

	// Watch for transcript changes while the UI runs so openings and
	// searches see fresh content.
	if watcher, err := corpus.NewWatcher(a.bus, a.logger, a.cfg.LogsRoot); err == nil {
		go watcher.Run(ctx)
	} else {
		a.logger.Warn("corpus watcher unavailable", zap.Error(err))
	}

	for {
		model := menu.New(a.store, a.progress.Current)
		program := tea.NewProgram(model, tea.WithContext(ctx))
		final, err := program.Run()
		if err != nil {
			return err
		}

		choice := final.(menu.Model).Choice()
		switch choice {
		case menu.ChoiceExtractAll:
			if err := runBulkExtract(ctx, a, 0); err != nil {
				fmt.Println(err)
			}
		case menu.ChoiceExtractRecent:
			if err := runBulkExtract(ctx, a, 5); err != nil {
				fmt.Println(err)
			}
		case menu.ChoiceSearch:
			if err := runSearchSession(ctx, a); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func runBulkExtract(ctx context.Context, a *app, recent int) error {
	if err := a.scanAndWait(ctx); err != nil {
		return err
	}

	sessions := a.store.All()
	if recent > 0 && len(sessions) > recent {
		sessions = sessions[:recent]
	}

	extractor := export.NewExtractor(a.cfg.OutputDir, export.RendererFor(export.FormatMarkdown), a.logger)
	var exported int
	for _, meta := range sessions {
		transcript, err := a.store.Get(meta.Path)
		if err != nil {
			a.logger.Warn("skipping unreadable transcript")
			continue
		}
		if _, err := extractor.Extract(transcript); err == nil {
			exported++
		}
	}

	fmt.Printf("exported %d conversations to %s\n", exported, a.cfg.OutputDir)
	time.Sleep(time.Second)
	return nil
}

func runSearchSession(ctx context.Context, a *app) error {
	if err := a.scanAndWait(ctx); err != nil {
		return err
	}
	a.indexSemantic(ctx)

	state, worker := a.newSearchStack()
	session := ui.NewSession(state, worker, a.store, ui.SessionOptions{
		OutputDir:   a.cfg.OutputDir,
		ShowPreview: a.cfg.UI.ShowPreview,
	}, a.logger)

	_, err := session.Run(ctx)
	return err
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
