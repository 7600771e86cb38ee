package cmd

import (
	"github.com/jfmyers9/scloud/pkg/soundcloud"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user <id>",
	Short: "Show a user, or list what they posted and follow",
	Args:  cobra.ExactArgs(1),
	RunE:  runUser,
}

// userListCommand builds a "user <relation> <id>" subcommand around a
// paginated listing.
func userListCommand[T any](
	use, short string,
	list func(users *soundcloud.UserService, id int, done func(soundcloud.PaginatedAPIResponse[T])) soundcloud.CancelableOperation,
	show func(cmd *cobra.Command, items []T),
) *cobra.Command {
	c := &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			items, err := collect(ctx, pagesFlag(cmd, s.cfg), func(done func(soundcloud.PaginatedAPIResponse[T])) soundcloud.CancelableOperation {
				return list(s.client.Users(), id, done)
			})
			if err != nil {
				return explain(err)
			}

			show(cmd, items)
			return nil
		},
	}
	addPagesFlag(c)
	return c
}

func init() {
	rootCmd.AddCommand(userCmd)

	tracks := func(cmd *cobra.Command, items []soundcloud.Track) { printTracks(cmd.OutOrStdout(), items) }
	users := func(cmd *cobra.Command, items []soundcloud.User) { printUsers(cmd.OutOrStdout(), items) }

	userCmd.AddCommand(
		userListCommand("tracks", "List a user's tracks", (*soundcloud.UserService).Tracks, tracks),
		userListCommand("favorites", "List a user's favorite tracks", (*soundcloud.UserService).Favorites, tracks),
		userListCommand("followers", "List a user's followers", (*soundcloud.UserService).Followers, users),
		userListCommand("followings", "List the users a user follows", (*soundcloud.UserService).Followings, users),
		userListCommand("playlists", "List a user's playlists", (*soundcloud.UserService).Playlists,
			func(cmd *cobra.Command, items []soundcloud.Playlist) { printPlaylists(cmd.OutOrStdout(), items) }),
		userListCommand("comments", "List a user's comments", (*soundcloud.UserService).Comments,
			func(cmd *cobra.Command, items []soundcloud.Comment) { printComments(cmd.OutOrStdout(), items) }),
	)
}

func runUser(cmd *cobra.Command, args []string) error {
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

	user, err := fetch(ctx, func(done func(soundcloud.SimpleAPIResponse[soundcloud.User])) soundcloud.CancelableOperation {
		return s.client.Users().User(id, done)
	})
	if err != nil {
		return explain(err)
	}

	printUser(cmd.OutOrStdout(), user)
	return nil
}
