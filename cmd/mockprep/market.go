package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mockprep/mockprep-go/internal/marketplace"
	"github.com/mockprep/mockprep-go/internal/model"
)

const timeLayout = "2006-01-02 15:04"

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func expertsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "experts [id]",
		Short: "List experts, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			if len(args) == 1 {
				e, err := a.market.GetExpert(ctx, args[0])
				if err != nil {
					return err
				}
				return a.printJSON(e)
			}

			experts, err := a.market.ListExperts(ctx)
			if err != nil {
				return err
			}
			tw := a.table()
			fmt.Fprintln(tw, "ID\tNAME\tEXPERTISE\tYEARS\tPRICE\tRATING")
			for _, e := range experts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\t%.1f\n",
					e.ID, e.Name, strings.Join(e.Expertise, ", "), e.Experience, e.Price, e.Rating)
			}
			return tw.Flush()
		},
	}
}

func printSessions(a *app, sessions []model.SessionBooking) error {
	tw := a.table()
	fmt.Fprintln(tw, "ID\tEXPERT\tWHEN\tSTATUS\tPRICE")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\n",
			s.ID, s.ExpertID, s.ScheduledAt.Local().Format(timeLayout), s.Status, s.Price)
	}
	return tw.Flush()
}

func sessionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List your interview sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			sessions, err := a.market.MySessions(ctx)
			if err != nil {
				return err
			}
			return printSessions(a, sessions)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "cancel <session-id>",
		Short: "Cancel a booked session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			if err := a.market.CancelSession(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Session %s cancelled\n", args[0])
			return nil
		},
	})
	return cmd
}

func bookCmd(a *app) *cobra.Command {
	var (
		expertID string
		at       string
		notes    string
	)
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a session with an expert",
		RunE: func(cmd *cobra.Command, args []string) error {
			if expertID == "" || at == "" {
				return errors.New("--expert and --at are required")
			}
			when, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("--at must be RFC 3339, e.g. 2025-06-01T10:00:00Z: %w", err)
			}

			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			booking, err := a.market.BookSession(ctx, model.BookSessionRequest{ExpertID: expertID, ScheduledAt: when, Notes: notes})
			if err != nil {
				return err
			}
			if booking.ID == "" {
				fmt.Fprintf(a.out, "Booked session with expert %s for %s\n", expertID, when.Local().Format(timeLayout))
				return nil
			}
			fmt.Fprintf(a.out, "Booked session %s for %s (%s)\n", booking.ID, booking.ScheduledAt.Local().Format(timeLayout), booking.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&expertID, "expert", "", "Expert id")
	cmd.Flags().StringVar(&at, "at", "", "Start time (RFC 3339)")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes for the expert")
	return cmd
}

func joinCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "join <session-id>",
		Short: "Print the meeting link of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			link, err := a.market.JoinSession(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, link)
			return nil
		},
	}
}

func printNotifications(a *app, ns []model.Notification) error {
	tw := a.table()
	fmt.Fprintln(tw, "ID\tREAD\tWHEN\tTITLE\tMESSAGE")
	for _, n := range ns {
		read := " "
		if n.Read {
			read = "x"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.ID, read, n.CreatedAt.Local().Format(timeLayout), n.Title, n.Message)
	}
	return tw.Flush()
}

func notificationsCmd(a *app) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show notifications, optionally polling for new ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			if !watch {
				ns, err := a.market.Notifications(ctx)
				if err != nil {
					return err
				}
				return printNotifications(a, ns)
			}

			if interval <= 0 {
				interval = a.cfg.NotificationPollInterval
			}
			seen := map[string]bool{}
			poller := marketplace.NewPoller(a.market, interval, a.logger, func(ns []model.Notification) {
				var fresh []model.Notification
				for _, n := range ns {
					if !seen[n.ID] {
						seen[n.ID] = true
						fresh = append(fresh, n)
					}
				}
				if len(fresh) > 0 {
					printNotifications(a, fresh)
				}
			})
			err := poller.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep polling until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Polling interval (default NOTIFICATION_POLL_INTERVAL)")

	cmd.AddCommand(&cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			return a.market.MarkNotificationRead(ctx, args[0])
		},
	})
	return cmd
}

func certificationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "certifications",
		Short: "List your certifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			certs, err := a.market.Certifications(ctx)
			if err != nil {
				return err
			}
			tw := a.table()
			fmt.Fprintln(tw, "ID\tTITLE\tISSUED\tSCORE\tURL")
			for _, c := range certs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%s\n", c.ID, c.Title, c.IssuedAt.Local().Format("2006-01-02"), c.Score, c.CertificateURL)
			}
			return tw.Flush()
		},
	}
}
