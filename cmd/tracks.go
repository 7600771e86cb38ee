package cmd

import (
	"fmt"
	"strings"

	"github.com/jfmyers9/scloud/internal/outbox"
	"github.com/jfmyers9/scloud/pkg/soundcloud"
	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track <id>",
	Short: "Show a track",
	Long: `Show a single track.

With --format the track is rendered through a Go template instead, which
is handy for status lines. Available fields include .Title, .Genre,
.User.Username and .Duration; the duration function formats lengths.

  scloud track 42 --format '{{.User.Username}} - {{.Title}}' --width 30`,
	Args: cobra.ExactArgs(1),
	RunE: runTrack,
}

var tracksCmd = &cobra.Command{
	Use:   "tracks <id>...",
	Short: "Show several tracks in one request",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTracks,
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search tracks",
	Long: `Search tracks by free text, tags, genres and track types.

  scloud search "deep house" --genres house --types original,remix --pages 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

var relatedCmd = &cobra.Command{
	Use:   "related <id>",
	Short: "Show tracks related to a track",
	Args:  cobra.ExactArgs(1),
	RunE:  runRelated,
}

var commentsCmd = &cobra.Command{
	Use:   "comments <track-id>",
	Short: "List the comments on a track",
	Args:  cobra.ExactArgs(1),
	RunE:  runComments,
}

var commentCmd = &cobra.Command{
	Use:   "comment <track-id> <text>",
	Short: "Comment on a track",
	Args:  cobra.ExactArgs(2),
	RunE:  runComment,
}

var favoritersCmd = &cobra.Command{
	Use:   "favoriters <track-id>",
	Short: "List the users who favorited a track",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoriters,
}

func init() {
	rootCmd.AddCommand(trackCmd, tracksCmd, searchCmd, relatedCmd, commentsCmd, commentCmd, favoritersCmd)

	trackCmd.Flags().StringP("format", "f", "", "Output format template")
	trackCmd.Flags().IntP("width", "w", 0, "Fixed output width for --format (0=disabled)")

	searchCmd.Flags().StringSlice("tags", nil, "Filter by tags")
	searchCmd.Flags().StringSlice("genres", nil, "Filter by genres")
	searchCmd.Flags().StringSlice("types", nil, "Filter by track types (original, remix, live, ...)")
	addPagesFlag(searchCmd)
	addPagesFlag(commentsCmd)
	addPagesFlag(favoritersCmd)

	commentCmd.Flags().Duration("at", 0, "Position in the track, e.g. 1m30s")
	addQueueFlags(commentCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
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

	track, err := fetch(ctx, func(done func(soundcloud.SimpleAPIResponse[soundcloud.Track])) soundcloud.CancelableOperation {
		return s.client.Tracks().Track(id, done)
	})
	if err != nil {
		return explain(err)
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		printTrack(cmd.OutOrStdout(), track)
		return nil
	}

	output, err := formatTrack(track, format)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	width, _ := cmd.Flags().GetInt("width")
	fmt.Fprintln(cmd.OutOrStdout(), fit(output, width))
	return nil
}

func runTracks(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
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

	tracks, err := fetch(ctx, func(done func(soundcloud.SimpleAPIResponse[[]soundcloud.Track])) soundcloud.CancelableOperation {
		return s.client.Tracks().List(ids, done)
	})
	if err != nil {
		return explain(err)
	}

	printTracks(cmd.OutOrStdout(), tracks)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := soundcloud.SearchQuery{}
	if len(args) == 1 {
		query.Query = args[0]
	}
	query.Tags, _ = cmd.Flags().GetStringSlice("tags")
	query.Genres, _ = cmd.Flags().GetStringSlice("genres")

	types, _ := cmd.Flags().GetStringSlice("types")
	for _, t := range types {
		query.Types = append(query.Types, soundcloud.TrackType(strings.ToLower(t)))
	}

	if query.Query == "" && len(query.Tags) == 0 && len(query.Genres) == 0 && len(query.Types) == 0 {
		return fmt.Errorf("search needs a query or at least one filter")
	}

	s, err := newSession(nil)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	tracks, err := collect(ctx, pagesFlag(cmd, s.cfg), func(done func(soundcloud.PaginatedAPIResponse[soundcloud.Track])) soundcloud.CancelableOperation {
		return s.client.Tracks().Search(query, done)
	})
	if err != nil {
		return explain(err)
	}

	printTracks(cmd.OutOrStdout(), tracks)
	return nil
}

func runRelated(cmd *cobra.Command, args []string) error {
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

	tracks, err := fetch(ctx, func(done func(soundcloud.SimpleAPIResponse[[]soundcloud.Track])) soundcloud.CancelableOperation {
		return s.client.Tracks().Related(id, done)
	})
	if err != nil {
		return explain(err)
	}

	printTracks(cmd.OutOrStdout(), tracks)
	return nil
}

func runComments(cmd *cobra.Command, args []string) error {
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

	comments, err := collect(ctx, pagesFlag(cmd, s.cfg), func(done func(soundcloud.PaginatedAPIResponse[soundcloud.Comment])) soundcloud.CancelableOperation {
		return s.client.Tracks().Comments(id, done)
	})
	if err != nil {
		return explain(err)
	}

	printComments(cmd.OutOrStdout(), comments)
	return nil
}

func runComment(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	body := strings.TrimSpace(args[1])
	if body == "" {
		return fmt.Errorf("comment text is empty")
	}
	at, _ := cmd.Flags().GetDuration("at")
	if at < 0 {
		return fmt.Errorf("--at must not be negative")
	}

	s, err := newSession(nil)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	comment, err := fetch(ctx, func(done func(soundcloud.SimpleAPIResponse[soundcloud.Comment])) soundcloud.CancelableOperation {
		return s.client.Tracks().Comment(id, body, at, done)
	})
	if err != nil {
		queued, qerr := enqueueOffline(ctx, cmd, err, outbox.Action{
			Kind:     outbox.KindComment,
			TargetID: id,
			Body:     body,
			At:       at,
		})
		if queued || qerr != nil {
			return qerr
		}
		return explain(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Commented on %d at %s (comment %d)\n",
		successMark, id, formatDuration(comment.Timestamp), comment.ID)
	return nil
}

func runFavoriters(cmd *cobra.Command, args []string) error {
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

	users, err := collect(ctx, pagesFlag(cmd, s.cfg), func(done func(soundcloud.PaginatedAPIResponse[soundcloud.User])) soundcloud.CancelableOperation {
		return s.client.Tracks().Favoriters(id, done)
	})
	if err != nil {
		return explain(err)
	}

	printUsers(cmd.OutOrStdout(), users)
	return nil
}
