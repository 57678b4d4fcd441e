package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"onesmallstep/internal/bot"
	"onesmallstep/internal/service"
)

var (
	catalogCategory string
	catalogSearch   string
	resetConfirmed  bool
)

// botCmd runs the Telegram bot and the daily reminder.
var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long: `Starts long polling for Telegram updates. When REMINDER_TIME is set
(HH:MM, default 19:00) a daily check-in is sent to OWNER_CHAT_ID.`,
	Args: cobra.NoArgs,
	RunE: runBot,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List or search the phobia catalog",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show streak, weekly steps and active plans",
	Args:  cobra.NoArgs,
	RunE:  runProgress,
}

var resetCmd = &cobra.Command{
	Use:   "reset [phobia-id]",
	Short: "Delete all progress of one phobia",
	Args:  cobra.ExactArgs(1),
	RunE:  runReset,
}

func runBot(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	telegramBot, err := bot.New(a.cfg, bot.Services{
		Catalog:  a.catalog,
		Exposure: a.exposure,
		Progress: a.progress,
		Reminder: a.reminder,
	}, a.hub, a.log)
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}

	if a.cfg.ReminderTime != "" {
		scheduler := service.NewSchedulerService(time.Local, a.log)
		if _, err := scheduler.ScheduleDaily("daily-reminder", a.cfg.ReminderTime, telegramBot.SendDailyReminder); err != nil {
			return fmt.Errorf("schedule reminder: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		a.log.Info("daily reminder scheduled", "at", a.cfg.ReminderTime)
	}

	a.log.Info("one small step bot started")
	if err := telegramBot.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot stopped with error: %w", err)
	}
	a.log.Info("shutdown complete")
	return nil
}

func runCatalog(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.catalog.Browse(cmd.Context(), catalogCategory, catalogSearch)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(res.Phobias) == 0 {
		fmt.Fprintln(out, res.Message)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSCIENTIFIC NAME\tCATEGORY\tACTIVE")
	for _, p := range res.Phobias {
		active := ""
		if p.IsActive {
			active = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.ScientificName, p.Category, active)
	}
	return w.Flush()
}

func runProgress(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	o, err := a.progress.Overview(cmd.Context(), time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Streak:          %d\n", o.Streak)
	fmt.Fprintf(out, "Completed steps: %d\n", o.CompletedSteps)
	fmt.Fprintf(out, "This week:       %d\n", len(o.Weekly))
	fmt.Fprintln(out, o.Message)
	if len(o.ActivePhobias) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPHOBIA\tDONE\tPERCENT")
	for _, p := range o.ActivePhobias {
		fmt.Fprintf(w, "%d\t%s\t%d/%d\t%d%%\n", p.Phobia.ID, p.Phobia.Name, p.Completed, p.Total, p.Percent)
	}
	return w.Flush()
}

func runReset(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid phobia id %q", args[0])
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	details, err := a.catalog.Details(cmd.Context(), uint(id))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !resetConfirmed {
		fmt.Fprintf(out, "%s has %d completed steps. Re-run with --yes to delete its progress.\n",
			details.Phobia.Name, details.Progress.Completed)
		return nil
	}

	deleted, err := a.progress.Reset(cmd.Context(), uint(id))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed %d progress records for %s.\n", deleted, details.Phobia.Name)
	return nil
}
