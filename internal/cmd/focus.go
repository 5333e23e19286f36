package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/novahuman/compass/internal/direction"
	"github.com/novahuman/compass/internal/models"
	"github.com/novahuman/compass/internal/progress"
	"github.com/novahuman/compass/internal/recovery"
	"github.com/novahuman/compass/internal/store"
)

var focusCmd = &cobra.Command{
	Use:   "focus [minutes]",
	Short: "Run a focus session on today's step",
	Long: `# ⏱️ Focus

Runs a timed focus session. When the timer completes, the session counts
toward your direction's progress, at most once per day, no matter how many
sessions you run. Stopping early records nothing.

Afterwards you get a two-minute debrief: what you did, what blocked you,
and the next smallest step.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, repo, err := directionMachine()
		if err != nil {
			return err
		}
		defer repo.Close()

		ctx := context.Background()
		if err := m.Refresh(ctx); err != nil {
			return err
		}
		if err := repo.PruneEpochs(ctx, m.Epoch()); err != nil {
			return err
		}

		minutes := 25
		if d := m.Direction(); d != nil && d.TodayStep != nil && d.TodayStep.EstimateMin > 0 {
			minutes = d.TodayStep.EstimateMin
		}
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("minutes must be a positive number, got %q", args[0])
			}
			minutes = n
		}

		guard := progress.NewGuard(m, repo)
		guard.StagedStepText = stepText
		guard.StagedStepMin = minutes

		timer := progress.NewTimer()
		timer.Notify = func(msg string) {
			// Terminal bell stands in for the desktop notification.
			fmt.Printf("\a\n🔔 %s\n", msg)
		}
		timer.OnComplete = func() error {
			if err := guard.CompleteDayOnce(ctx); err != nil {
				fmt.Println("Focus complete, but progress could not be recorded:", err)
				return err
			}
			fmt.Println("Focus complete. Progress recorded.")
			return nil
		}

		timer.Start(minutes, time.Now())
		fmt.Printf("Focus for %d minutes. One task. No switching.\n", minutes)

		recovery.SafeGo("focus-countdown", func() {
			for timer.Running() {
				fmt.Printf("\r%s left ", progress.FormatClock(timer.Remaining(time.Now())))
				time.Sleep(time.Second)
			}
		})

		if err := timer.Run(ctx); err != nil {
			return err
		}

		if !timer.Done() {
			return nil
		}

		return captureDebrief(ctx, m, repo, minutes)
	},
}

// captureDebrief asks the three debrief questions, stores the answers, and
// prints the local mentor suggestion.
func captureDebrief(ctx context.Context, m *direction.Machine, repo store.Repository, minutes int) error {
	reader := bufio.NewReader(os.Stdin)

	ask := func(prompt string) string {
		fmt.Printf("%s ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return ""
		}
		return strings.TrimSpace(line)
	}

	debrief := models.Debrief{
		Timestamp: time.Now().Format(time.RFC3339),
		Minutes:   minutes,
	}
	if d := m.Direction(); d != nil {
		debrief.Direction = d.Title
		if d.TodayStep != nil {
			debrief.Step = d.TodayStep.Text
		}
	}

	debrief.Summary = ask("1) What did you do? (1-2 lines)")
	debrief.Blocker = ask("2) What blocked you? (optional)")
	debrief.Next = ask("3) Next smallest step? (optional)")

	if err := repo.SaveDebrief(ctx, debrief); err != nil {
		return err
	}

	fmt.Println("\n" + progress.Suggest(debrief))
	return nil
}

func init() {
	focusCmd.Flags().StringVar(&stepText, "text", "", "stage today's step text if none exists yet")
	rootCmd.AddCommand(focusCmd)
}
