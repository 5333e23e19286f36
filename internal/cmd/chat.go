package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/novahuman/compass/internal/chat"
	"github.com/novahuman/compass/internal/logger"
	"github.com/novahuman/compass/internal/tui"
)

var chatNew bool

var chatCmd = &cobra.Command{
	Use:   "chat [sid]",
	Short: "Open the coach conversation",
	Long: `# 💬 Chat

Opens the interactive conversation. With no argument the last session is
resumed; pass a session id to open a specific one, or **--new** to start
fresh. The session id itself is only created when the first message is
sent.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, repo, err := setup()
		if err != nil {
			return err
		}
		defer repo.Close()

		ctx := context.Background()

		ctrl := chat.NewController(client)
		ctrl.SetContext(chat.LoadExecContext(ctx, client))
		ctrl.OnSessionCreated = func(sid string) {
			if err := repo.SetCachedSession(ctx, sid); err != nil {
				logger.Debugf("failed to cache session id: %v", err)
			}
		}

		switch {
		case chatNew:
			// fresh conversation; sid appears on first send
		case len(args) == 1:
			ctrl.SetSession(args[0])
		default:
			if sid, err := repo.CachedSession(ctx); err == nil && sid != "" {
				ctrl.SetSession(sid)
			}
		}

		if sid := ctrl.SessionID(); sid != "" {
			if err := repo.SetCachedSession(ctx, sid); err != nil {
				logger.Debugf("failed to cache session id: %v", err)
			}
		}

		return tui.Run(ctrl)
	},
}

func init() {
	chatCmd.Flags().BoolVar(&chatNew, "new", false, "start a new conversation")
	rootCmd.AddCommand(chatCmd)
}
