package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/novahuman/compass/internal/chat"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, repo, err := setup()
		if err != nil {
			return err
		}
		defer repo.Close()

		ctrl := chat.NewController(client)
		items, err := ctrl.Sessions(context.Background())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No conversations yet.")
			return nil
		}

		for _, s := range items {
			updated := ""
			if !s.UpdatedAt.IsZero() {
				updated = s.UpdatedAt.Format("2006-01-02 15:04")
			}
			fmt.Printf("%-40s  %-24s  %3d msgs  %s\n", s.SID, s.Title, s.Count, updated)
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <sid>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(fmt.Sprintf("Delete chat %s? This can't be undone.", args[0])) {
			fmt.Println("Aborted.")
			return nil
		}

		_, client, repo, err := setup()
		if err != nil {
			return err
		}
		defer repo.Close()

		ctrl := chat.NewController(client)
		if err := ctrl.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}
