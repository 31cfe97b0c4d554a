package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobmatch/internal/browse"
	"github.com/amishk599/jobmatch/internal/model"
	"github.com/amishk599/jobmatch/internal/search"
)

var browseFlags struct {
	position string
	location string
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse search results interactively (TUI)",
	Long:  "Shows the saved-search picker (or runs --position/--location directly), then the split-pane collected vs ranked view.",
	RunE:  runBrowseCmd,
}

func init() {
	browseCmd.Flags().StringVarP(&browseFlags.position, "position", "p", "", "search this position instead of picking a saved search")
	browseCmd.Flags().StringVarP(&browseFlags.location, "location", "l", "", "location for --position")
	rootCmd.AddCommand(browseCmd)
}

func runBrowseCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Any log output while the TUI is up corrupts the display.
	silent := setupLoggerTo(io.Discard, false)
	svc, err := buildService(cfg, buildRanker(cfg, silent), "cli", silent)
	if err != nil {
		logger.Error("failed to build search pipeline", "error", err)
		os.Exit(1)
	}

	if browseFlags.position != "" {
		q := model.SearchQuery{Position: browseFlags.position, Location: browseFlags.location}
		browseOnce(svc, q)
		return nil
	}

	queries := batchQueries(cfg, "", "")
	if len(queries) == 0 {
		fmt.Println("No saved searches in config; pass --position and --location.")
		return nil
	}

	for {
		choice, err := browse.RunQueryPicker(queries)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return nil
		}
		if choice < 0 {
			return nil
		}
		if wantQuit := browseOnce(svc, queries[choice]); wantQuit {
			return nil
		}
	}
}

// browseOnce runs q behind a spinner and opens the result view.
// Reports whether the user asked to quit rather than go back.
func browseOnce(svc *search.Service, q model.SearchQuery) bool {
	res, err := browse.RunLoader(fmt.Sprintf("%s in %s", q.Position, q.Location), func(ctx context.Context) search.Result {
		return svc.Run(ctx, q)
	})
	if err != nil {
		fmt.Printf("Search error: %v\n", err)
		return true
	}

	wantQuit, err := browse.RunBrowseTUI(q, res)
	if err != nil {
		fmt.Printf("TUI error: %v\n", err)
		return true
	}
	return wantQuit
}
