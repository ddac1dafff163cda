package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/maruel/blogdb/internal/console"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users ordered by id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		return app.ListUsers()
	},
}

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Inspect posts",
}

var postsUser int

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List post ids and titles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if postsUser < 0 {
			return fmt.Errorf("%w: %d", errBadID, postsUser)
		}
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if postsUser > 0 {
			return app.ListUserPosts(postsUser)
		}
		return app.ListPosts()
	},
}

var postsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a post with its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("%w: %q", errBadID, args[0])
		}
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		return app.ShowPost(id)
	},
}

func newApp(cmd *cobra.Command) (*console.App, error) {
	stores, err := openStores(cmd.Context())
	if err != nil {
		return nil, err
	}
	return console.New(stores, cmd.InOrStdin(), cmd.OutOrStdout()), nil
}

func init() {
	postsListCmd.Flags().IntVar(&postsUser, "user", 0, "Only list posts written by this user id (0 lists all posts)")
	usersCmd.AddCommand(usersListCmd)
	postsCmd.AddCommand(postsListCmd, postsShowCmd)
	rootCmd.AddCommand(usersCmd, postsCmd)
}
