package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/novahuman/compass/internal/direction"
	"github.com/novahuman/compass/internal/models"
	"github.com/novahuman/compass/internal/progress"
	"github.com/novahuman/compass/internal/store"
)

var (
	directionTitle string
	directionWhy   string
	directionDays  int
	directionWatch bool
	stepText       string
	stepMin        int
)

var directionCmd = &cobra.Command{
	Use:   "direction",
	Short: "Manage your one time-boxed goal",
	Long: `# 🎯 Direction

One focus, a fixed number of days, locked by default. A direction starts as
an editable draft, runs through a 24-hour calibration window, then locks.
Unlocking re-opens calibration for another 24 hours.`,
}

var directionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current direction",
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
		printDirection(m)

		if !directionWatch {
			return nil
		}

		// 1s watchdog poll: the countdown is derived from the server's
		// calibration_ends_at on every tick, and finalize fires once when
		// it reaches zero while we are watching.
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for now := range ticker.C {
			if m.Status() != models.StatusCalibration {
				printDirection(m)
				return nil
			}
			finalized, err := m.Tick(ctx, now)
			if err != nil {
				return err
			}
			if finalized {
				fmt.Println("\nCalibration complete. Direction locked.")
				printDirection(m)
				return nil
			}
			fmt.Printf("\rCalibration ends in %s ", direction.FormatCountdown(m.CountdownRemaining(now)))
		}
		return nil
	},
}

var directionSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save draft fields",
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
		if err := m.SaveDraft(ctx, draftFromFlags()); err != nil {
			return err
		}
		printDirection(m)
		return nil
	},
}

var directionCalibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Commit the draft and start the 24h calibration window",
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
		if err := m.StartCalibration(ctx, draftFromFlags()); err != nil {
			return err
		}
		printDirection(m)
		return nil
	},
}

var directionFinalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Lock the direction now",
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
		if err := m.Finalize(ctx); err != nil {
			return err
		}
		printDirection(m)
		return nil
	},
}

var directionUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock for 24h of edits",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm("Unlock for 24h? Only do this if you truly need to change your direction.") {
			fmt.Println("Aborted.")
			return nil
		}

		m, repo, err := directionMachine()
		if err != nil {
			return err
		}
		defer repo.Close()

		ctx := context.Background()
		if err := m.Refresh(ctx); err != nil {
			return err
		}
		if err := m.UnlockForEdit(ctx); err != nil {
			return err
		}
		printDirection(m)
		return nil
	},
}

var directionStepCmd = &cobra.Command{
	Use:   "step",
	Short: "Set today's single action item",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(stepText) == "" {
			return fmt.Errorf("provide the step with --text")
		}
		m, repo, err := directionMachine()
		if err != nil {
			return err
		}
		defer repo.Close()

		ctx := context.Background()
		if err := m.Refresh(ctx); err != nil {
			return err
		}
		step, err := m.SetTodayStep(ctx, stepText, stepMin)
		if err != nil {
			return err
		}
		if step != nil {
			fmt.Printf("Today: %s (%d min)\n", step.Text, step.EstimateMin)
		}
		return nil
	},
}

var directionDoneCmd = &cobra.Command{
	Use:   "done",
	Short: "Mark today's step done and record progress (once per day)",
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

		guard := progress.NewGuard(m, repo)
		guard.StagedStepText = stepText
		guard.StagedStepMin = stepMin
		if err := guard.CompleteDayOnce(ctx); err != nil {
			return err
		}
		printDirection(m)
		return nil
	},
}

func directionMachine() (*direction.Machine, store.Repository, error) {
	_, client, repo, err := setup()
	if err != nil {
		return nil, nil, err
	}
	return direction.NewMachine(client), repo, nil
}

func draftFromFlags() models.DirectionDraft {
	return models.DirectionDraft{
		Title:        directionTitle,
		Why:          directionWhy,
		DurationDays: directionDays,
	}
}

func printDirection(m *direction.Machine) {
	d := m.Direction()
	if d == nil {
		fmt.Println("No direction yet. Start one with: compass direction save --title ...")
		return
	}

	now := time.Now()
	fmt.Printf("Direction: %s\n", d.Title)
	if d.Why != "" {
		fmt.Printf("Why:       %s\n", d.Why)
	}
	fmt.Printf("Status:    %s\n", d.Status)

	switch d.Status {
	case models.StatusCalibration:
		fmt.Printf("Calibration ends in %s\n", direction.FormatCountdown(m.CountdownRemaining(now)))
	case models.StatusLocked:
		if days, ok := m.DaysLeft(now); ok {
			fmt.Printf("Days left: %d of %d\n", days, d.DurationDays)
		}
		fmt.Printf("Progress:  %d%% (%d/%d days)\n", m.ProgressPercent(), d.MetricProgress, d.DurationDays)
	}

	if d.TodayStep != nil {
		done := " "
		if d.TodayStep.Done {
			done = "x"
		}
		fmt.Printf("Today:     [%s] %s (%d min)\n", done, d.TodayStep.Text, d.TodayStep.EstimateMin)
	}
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	for _, c := range []*cobra.Command{directionSaveCmd, directionCalibrateCmd} {
		c.Flags().StringVar(&directionTitle, "title", "", "what you are building")
		c.Flags().StringVar(&directionWhy, "why", "", "how finishing will feel, or what not finishing costs")
		c.Flags().IntVar(&directionDays, "days", 30, "duration in days")
	}
	directionShowCmd.Flags().BoolVar(&directionWatch, "watch", false, "keep polling the calibration countdown")
	for _, c := range []*cobra.Command{directionStepCmd, directionDoneCmd} {
		c.Flags().StringVar(&stepText, "text", "", "the step text")
		c.Flags().IntVar(&stepMin, "min", 25, "estimated minutes")
	}

	directionCmd.AddCommand(
		directionShowCmd,
		directionSaveCmd,
		directionCalibrateCmd,
		directionFinalizeCmd,
		directionUnlockCmd,
		directionStepCmd,
		directionDoneCmd,
	)
	rootCmd.AddCommand(directionCmd)
}
