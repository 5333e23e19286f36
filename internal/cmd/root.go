package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/novahuman/compass/internal/api"
	"github.com/novahuman/compass/internal/config"
	"github.com/novahuman/compass/internal/logger"
	"github.com/novahuman/compass/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "compass",
	Short: "🧭 Compass - coaching companion for one direction at a time",
	Long: `# 🧭 Compass

**Talk through what you're avoiding, commit to one direction, do one step a day.**

## ✨ What it does

- 💬 **Chat** with your coach, with conversations that survive flaky backends
- 🎯 **Direction**: one time-boxed goal, locked after a 24h calibration window
- ⏱️  **Focus sessions** that record your daily progress exactly once
- 📋 **Sessions** listing and switching

## 🚀 Getting started

Set **COMPASS_API_BASE** to your backend URL, then run **compass chat**.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := logger.GetLogLevelFromEnv()
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			level = logger.LevelDebug
		}
		logger.Configure(level, true)
	}

	// Markdown help rendering via glamour
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderMarkdownHelp(cmd)
	})
}

// setup wires the shared dependencies for every subcommand.
func setup() (*config.Config, *api.Client, store.Repository, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	client := api.NewClient(cfg)
	client.OnUnauthorized = func() {
		// Session expiry is a global signal, not a feature-level error.
		// The login boundary lives outside this tool.
		logger.Warn("backend rejected the credential; sign in again and update COMPASS_API_TOKEN")
		client.SetToken("")
	}

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, client, repo, nil
}

// renderMarkdownHelp renders command help with glamour.
func renderMarkdownHelp(cmd *cobra.Command) {
	var helpContent strings.Builder

	if cmd.Long != "" {
		helpContent.WriteString(cmd.Long)
		helpContent.WriteString("\n\n")
	} else if cmd.Short != "" {
		helpContent.WriteString("# " + cmd.Short)
		helpContent.WriteString("\n\n")
	}

	helpContent.WriteString("## 📖 Usage\n\n")
	helpContent.WriteString("```bash\n")
	helpContent.WriteString(cmd.UseLine())
	helpContent.WriteString("\n```\n\n")

	if cmd.HasAvailableSubCommands() {
		helpContent.WriteString("## 🔧 Commands\n\n")
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() {
				helpContent.WriteString(fmt.Sprintf("- **%s**: %s\n", sub.Name(), sub.Short))
			}
		}
		helpContent.WriteString("\n")
	}

	if cmd.HasAvailableLocalFlags() {
		helpContent.WriteString("## 🎛️ Flags\n\n")
		helpContent.WriteString("```\n")
		helpContent.WriteString(cmd.LocalFlags().FlagUsages())
		helpContent.WriteString("```\n")
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Print(helpContent.String())
		return
	}

	rendered, err := renderer.Render(helpContent.String())
	if err != nil {
		fmt.Print(helpContent.String())
		return
	}
	fmt.Print(rendered)
}
