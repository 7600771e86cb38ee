package cmd

import (
	"fmt"

	"github.com/jfmyers9/scloud/internal/outbox"
	"github.com/spf13/cobra"
)

var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "List actions queued while offline",
	Long: `List the favorites, follows and comments queued while offline,
newest first. 'scloud sync' replays the pending ones.`,
	Args: cobra.NoArgs,
	RunE: runOutbox,
}

func init() {
	rootCmd.AddCommand(outboxCmd)
	outboxCmd.Flags().String("data-dir", "", "Data directory for the outbox (default: ~/.local/share/scloud)")
}

func runOutbox(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("data-dir")
	queue, err := openOutbox(dir)
	if err != nil {
		return err
	}
	defer queue.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	actions, err := queue.All(ctx)
	if err != nil {
		return err
	}
	pending, err := queue.Count(ctx, outbox.StatusPending)
	if err != nil {
		return err
	}

	printActions(cmd.OutOrStdout(), actions)
	if len(actions) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d pending\n", pending)
	}
	return nil
}
