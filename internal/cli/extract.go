package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatgrep/internal/export"
)

var (
	flagRecent int
	flagFormat string
	flagOutput string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Export conversations to readable files",
	Long: `Export conversations as markdown or plain text files.

Examples:
  chatgrep extract
  chatgrep extract --recent 5
  chatgrep extract --format text --output ./exports`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().IntVar(&flagRecent, "recent", 0, "only export the N most recently modified conversations (0 = all)")
	extractCmd.Flags().StringVar(&flagFormat, "format", "markdown", "output format: markdown or text")
	extractCmd.Flags().StringVar(&flagOutput, "output", "", "output directory (default from config)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	var format export.Format
	switch flagFormat {
	case "markdown", "md":
		format = export.FormatMarkdown
	case "text", "txt":
		format = export.FormatText
	default:
		return fmt.Errorf("unknown format %q", flagFormat)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.scanAndWait(ctx); err != nil {
		return err
	}

	outputDir := a.cfg.OutputDir
	if flagOutput != "" {
		outputDir = flagOutput
	}

	sessions := a.store.All()
	if flagRecent > 0 && len(sessions) > flagRecent {
		sessions = sessions[:flagRecent]
	}
	if len(sessions) == 0 {
		fmt.Println("no conversations found")
		return nil
	}

	extractor := export.NewExtractor(outputDir, export.RendererFor(format), a.logger)
	var exported int
	for _, meta := range sessions {
		transcript, err := a.store.Get(meta.Path)
		if err != nil {
			fmt.Printf("skipping %s: %v\n", meta.Path, err)
			continue
		}
		path, err := extractor.Extract(transcript)
		if err != nil {
			fmt.Printf("skipping %s: %v\n", meta.Path, err)
			continue
		}
		fmt.Println(path)
		exported++
	}

	fmt.Printf("exported %d of %d conversations\n", exported, len(sessions))
	return nil
}
