package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/anoixa/comic-tracker/internal/status"
	"github.com/anoixa/comic-tracker/utils"
)

// statusCmd 终端状态表
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the per-comic release status timeline",
	Long: `Show the release status of every active comic, from tomorrow back to today minus N days.

Example:
  comic-tracker status
  comic-tracker status --days 7
  comic-tracker status --json`,
	Run: func(cmd *cobra.Command, args []string) {
		days, _ := cmd.Flags().GetInt("days")
		asJSON, _ := cmd.Flags().GetBool("json")
		noColor, _ := cmd.Flags().GetBool("no-color")

		if err := runStatus(days, asJSON, noColor); err != nil {
			log.Fatalf("Status failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntP("days", "d", 0, "Number of past days to show (default: status_default_days)")
	statusCmd.Flags().Bool("json", false, "Print the report as JSON")
	statusCmd.Flags().Bool("no-color", false, "Disable coloured output")
}

func runStatus(days int, asJSON, noColor bool) error {
	if days < 0 {
		return fmt.Errorf("days must not be negative")
	}

	container, err := openContainer(true)
	if err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 命令行直接构建，不读写服务端缓存
	tl, err := container.Status.Timeline(ctx, days)
	if err != nil {
		return err
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(status.NewReport(tl, time.Now()))
	}

	if tl.Len() == 0 {
		fmt.Println("No active comics.")
		return nil
	}

	colorize := !noColor && shouldColorize(os.Stdout)
	fmt.Printf("Status as of %s (%d days)\n", tl.Today.Format(utils.DateLayout), len(tl.Days)-2)
	fmt.Println(renderStatusGrid(tl, colorize))
	fmt.Println(statusLegend())
	return nil
}
