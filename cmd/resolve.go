package cmd

import (
	"fmt"
	"strings"

	"github.com/jfmyers9/scloud/pkg/soundcloud"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Look up the user, track or playlist behind a soundcloud.com link",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	permalink := strings.TrimSpace(args[0])
	if !strings.Contains(permalink, "://") {
		permalink = "https://" + permalink
	}

	s, err := newSession(nil)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	resolved, err := fetch(ctx, func(done func(soundcloud.SimpleAPIResponse[soundcloud.ResolveResponse])) soundcloud.CancelableOperation {
		return s.client.Resolve(permalink, done)
	})
	if err != nil {
		return explain(err)
	}

	out := cmd.OutOrStdout()
	switch {
	case resolved.Playlist != nil:
		printPlaylist(out, *resolved.Playlist)
	case len(resolved.Users) == 1:
		printUser(out, resolved.Users[0])
	case len(resolved.Users) > 1:
		printUsers(out, resolved.Users)
	case len(resolved.Tracks) == 1:
		printTrack(out, resolved.Tracks[0])
	case len(resolved.Tracks) > 1:
		printTracks(out, resolved.Tracks)
	default:
		return fmt.Errorf("nothing found at %s", permalink)
	}
	return nil
}
