package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered conversations",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.scanAndWait(cmd.Context()); err != nil {
		return err
	}

	sessions := a.store.All()
	if len(sessions) == 0 {
		fmt.Println("no conversations found")
		return nil
	}

	for _, s := range sessions {
		date := "unknown"
		if !s.Modified.IsZero() {
			date = s.Modified.Format("2006-01-02 15:04")
		}
		fmt.Printf("%s  %-24s %8.1f KB  %s\n", date, s.Project, float64(s.SizeBytes)/1024, s.Path)
	}
	fmt.Printf("%d conversations\n", len(sessions))
	return nil
}
