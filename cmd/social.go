package cmd

import (
	"context"
	"fmt"

	"github.com/jfmyers9/scloud/internal/outbox"
	"github.com/jfmyers9/scloud/pkg/soundcloud"
	"github.com/spf13/cobra"
)

var favoriteCmd = &cobra.Command{
	Use:   "favorite <track-id>",
	Short: "Add a track to your favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggle(cmd, args, outbox.KindFavorite)
	},
}

var unfavoriteCmd = &cobra.Command{
	Use:   "unfavorite <track-id>",
	Short: "Remove a track from your favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggle(cmd, args, outbox.KindUnfavorite)
	},
}

var followCmd = &cobra.Command{
	Use:   "follow <user-id>",
	Short: "Follow a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggle(cmd, args, outbox.KindFollow)
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <user-id>",
	Short: "Stop following a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggle(cmd, args, outbox.KindUnfollow)
	},
}

func init() {
	rootCmd.AddCommand(favoriteCmd, unfavoriteCmd, followCmd, unfollowCmd)

	for _, c := range []*cobra.Command{favoriteCmd, unfavoriteCmd} {
		c.Flags().Int("user-id", 0, "Your user id (default: looked up with 'me')")
	}
	for _, c := range []*cobra.Command{favoriteCmd, unfavoriteCmd, followCmd, unfollowCmd} {
		addQueueFlags(c)
	}
}

var toggleDone = map[outbox.Kind]string{
	outbox.KindFavorite:   "Favorited track",
	outbox.KindUnfavorite: "Unfavorited track",
	outbox.KindFollow:     "Following user",
	outbox.KindUnfollow:   "Unfollowed user",
}

func runToggle(cmd *cobra.Command, args []string, kind outbox.Kind) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	s, err := newSession(nil)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	action := outbox.Action{Kind: kind, TargetID: id}
	if kind == outbox.KindFavorite || kind == outbox.KindUnfavorite {
		action.UserID, err = currentUserID(ctx, cmd, s)
		if err != nil {
			return explain(err)
		}
	}

	if err := (outbox.ClientPerformer{Client: s.client}).Perform(ctx, action); err != nil {
		queued, qerr := enqueueOffline(ctx, cmd, err, action)
		if queued || qerr != nil {
			return qerr
		}
		return explain(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d\n", successMark, toggleDone[kind], id)
	return nil
}

// currentUserID returns --user-id, or the id of the logged in user
func currentUserID(ctx context.Context, cmd *cobra.Command, s *session) (int, error) {
	if id, _ := cmd.Flags().GetInt("user-id"); id > 0 {
		return id, nil
	}

	me, err := fetch(ctx, func(done func(soundcloud.SimpleAPIResponse[soundcloud.User])) soundcloud.CancelableOperation {
		return s.client.Me().Profile(done)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to look up your user id (pass --user-id when offline): %w", err)
	}
	return me.ID, nil
}
