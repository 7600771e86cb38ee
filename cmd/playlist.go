package cmd

import (
	"context"
	"fmt"

	"github.com/jfmyers9/scloud/pkg/soundcloud"
	"github.com/spf13/cobra"
)

var playlistCmd = &cobra.Command{
	Use:   "playlist <id>",
	Short: "Show a playlist, or create and edit your playlists",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylist,
}

var playlistCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create an empty playlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistCreate,
}

var playlistAddCmd = &cobra.Command{
	Use:   "add <playlist-id> <track-id>...",
	Short: "Append tracks to a playlist",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlaylistEdit(cmd, args, (*soundcloud.PlaylistService).AddTracks, "Added")
	},
}

var playlistRemoveCmd = &cobra.Command{
	Use:   "remove <playlist-id> <track-id>...",
	Short: "Remove tracks from a playlist",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlaylistEdit(cmd, args, (*soundcloud.PlaylistService).RemoveTracks, "Removed")
	},
}

func init() {
	rootCmd.AddCommand(playlistCmd)
	playlistCmd.AddCommand(playlistCreateCmd, playlistAddCmd, playlistRemoveCmd)

	playlistCmd.Flags().String("secret-token", "", "Secret token of a private playlist")
	playlistCreateCmd.Flags().Bool("public", false, "Make the playlist public (default: private)")
}

func getPlaylist(ctx context.Context, s *session, id int, secretToken string) (soundcloud.Playlist, error) {
	return fetch(ctx, func(done func(soundcloud.SimpleAPIResponse[soundcloud.Playlist])) soundcloud.CancelableOperation {
		return s.client.Playlists().Playlist(id, secretToken, done)
	})
}

func runPlaylist(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	secretToken, _ := cmd.Flags().GetString("secret-token")

	s, err := newSession(nil)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	p, err := getPlaylist(ctx, s, id, secretToken)
	if err != nil {
		return explain(err)
	}

	printPlaylist(cmd.OutOrStdout(), p)
	return nil
}

func runPlaylistCreate(cmd *cobra.Command, args []string) error {
	sharing := soundcloud.SharingPrivate
	if public, _ := cmd.Flags().GetBool("public"); public {
		sharing = soundcloud.SharingPublic
	}

	s, err := newSession(nil)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	p, err := fetch(ctx, func(done func(soundcloud.SimpleAPIResponse[soundcloud.Playlist])) soundcloud.CancelableOperation {
		return s.client.Playlists().Create(args[0], sharing, done)
	})
	if err != nil {
		return explain(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Created %s playlist %q (%d)\n", successMark, p.Sharing, p.Title, p.ID)
	return nil
}

type playlistEdit func(s *soundcloud.PlaylistService, p soundcloud.Playlist, trackIDs []int, done func(soundcloud.SimpleAPIResponse[soundcloud.Playlist])) soundcloud.CancelableOperation

func runPlaylistEdit(cmd *cobra.Command, args []string, edit playlistEdit, verb string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	trackIDs, err := parseIDs(args[1:])
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

	// Edits replace the whole track list, so start from the current one
	current, err := getPlaylist(ctx, s, id, "")
	if err != nil {
		return explain(err)
	}

	updated, err := fetch(ctx, func(done func(soundcloud.SimpleAPIResponse[soundcloud.Playlist])) soundcloud.CancelableOperation {
		return edit(s.client.Playlists(), current, trackIDs, done)
	})
	if err != nil {
		return explain(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d track(s), %q now has %d\n", successMark, verb, len(trackIDs), updated.Title, len(updated.Tracks))
	return nil
}
