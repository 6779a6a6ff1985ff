package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
	"github.com/shelterbeds/matcheckin/internal/domain/providers"
)

func watchCmd() *cobra.Command {
	var facilityID string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print checkin events for a facility as they are published",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			bus := a.eventBus()
			if bus == nil {
				return fmt.Errorf("watch needs Redis; set REDIS_HOST")
			}
			defer bus.Close()

			return tail(ctx, bus, facilityID, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&facilityID, "facility", "", "Facility ID")
	_ = cmd.MarkFlagRequired("facility")
	return cmd
}

// tail writes events from the facility channel until ctx is done
func tail(ctx context.Context, bus providers.EventBus, facilityID string, w io.Writer) error {
	events, err := bus.Subscribe(ctx, providers.GetFacilityChannel(facilityID))
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := writeEvent(w, event); err != nil {
				return err
			}
		}
	}
}

func writeEvent(w io.Writer, event *entities.CheckinEvent) error {
	if outputJSON {
		return writeJSON(w, event)
	}
	date := "-"
	if event.CheckinDate != nil {
		date = event.CheckinDate.String()
	}
	guest := event.GuestID
	if guest == "" {
		guest = "-"
	}
	_, err := fmt.Fprintf(w, "%s %-10s %s guest=%s checkins=%s\n",
		event.Timestamp.Format("15:04:05"), event.EventType, date, guest, strings.Join(event.CheckinIDs, ","))
	return err
}
