package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured sources",
	Long:  "Reads the config and prints a table of all configured listing sites.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-15s %-10s %-10s %s\n", "Source", "Type", "Status", "Pacing")
	fmt.Println(strings.Repeat("─", 60))

	enabled, disabled := 0, 0
	for _, s := range cfg.Sources {
		status := "enabled"
		if !s.Enabled {
			status = "disabled"
			disabled++
		} else {
			enabled++
		}
		fmt.Printf("%-15s %-10s %-10s %s\n", s.Name, s.Type, status, pacing(s.MinDelay, s.PauseMin, s.PauseMax))
	}

	fmt.Printf("\nTotal: %d sources (%d enabled, %d disabled)\n", len(cfg.Sources), enabled, disabled)
	return nil
}

func pacing(minDelay, pauseMin, pauseMax time.Duration) string {
	var parts []string
	if minDelay > 0 {
		parts = append(parts, "min_delay "+minDelay.String())
	}
	if pauseMax > 0 {
		parts = append(parts, fmt.Sprintf("pause %s-%s", pauseMin, pauseMax))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
