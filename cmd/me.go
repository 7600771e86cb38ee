package cmd

import (
	"fmt"

	"github.com/jfmyers9/scloud/pkg/soundcloud"
	"github.com/spf13/cobra"
)

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the logged in user",
	Args:  cobra.NoArgs,
	RunE:  runMe,
}

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "Show your activity stream",
	Long: `Show the tracks and playlists posted or shared by the users you follow.

Only tracks, track shares and playlists are listed.`,
	Args: cobra.NoArgs,
	RunE: runActivities,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(meCmd, activitiesCmd, logoutCmd)
	addPagesFlag(activitiesCmd)
}

func runMe(cmd *cobra.Command, args []string) error {
	s, err := newSession(nil)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	me, err := fetch(ctx, func(done func(soundcloud.SimpleAPIResponse[soundcloud.User])) soundcloud.CancelableOperation {
		return s.client.Me().Profile(done)
	})
	if err != nil {
		return explain(err)
	}

	printUser(cmd.OutOrStdout(), me)
	return nil
}

func runActivities(cmd *cobra.Command, args []string) error {
	s, err := newSession(nil)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	activities, err := collect(ctx, pagesFlag(cmd, s.cfg), func(done func(soundcloud.PaginatedAPIResponse[soundcloud.Activity])) soundcloud.CancelableOperation {
		return s.client.Me().Activities(done)
	})
	if err != nil {
		return explain(err)
	}

	printActivities(cmd.OutOrStdout(), activities)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	s, err := newSession(nil)
	if err != nil {
		return err
	}
	defer s.Close()

	if s.client.Auth().Session() == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}

	s.client.Auth().Logout()
	fmt.Fprintf(cmd.OutOrStdout(), "%s Logged out\n", successMark)
	return nil
}
