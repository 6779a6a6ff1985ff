package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func mergeGuestsCmd() *cobra.Command {
	var facilityID, into, from string

	cmd := &cobra.Command{
		Use:   "merge-guests",
		Short: "Move every checkin of a duplicate guest to another guest and delete the duplicate",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			bus := a.eventBus()
			if bus != nil {
				defer bus.Close()
			}

			guest, err := a.mergeService(bus).Merge(ctx, facilityID, into, from)
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), guest)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "merged %s into %s (%s %s)\n", from, guest.ID, guest.FirstName, guest.LastName)
			return nil
		},
	}
	cmd.Flags().StringVar(&facilityID, "facility", "", "Facility ID")
	cmd.Flags().StringVar(&into, "into", "", "Guest that keeps the checkins")
	cmd.Flags().StringVar(&from, "from", "", "Duplicate guest to remove")
	_ = cmd.MarkFlagRequired("facility")
	_ = cmd.MarkFlagRequired("into")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
