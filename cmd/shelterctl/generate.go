package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
)

func generateCmd() *cobra.Command {
	var facilityID, templateID, date string
	var days int

	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Generate available mats for one or more nights from a template",
		Example: "  shelterctl generate --facility F --template T --date 2024-02-01 --days 7",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			start, err := entities.ParseDate(date)
			if err != nil {
				return err
			}

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
			svc := a.checkinService(bus)

			for _, night := range nights(start, days) {
				checkins, err := svc.Generate(ctx, facilityID, night, templateID)
				if err != nil {
					return fmt.Errorf("generate %s: %w", night, err)
				}
				if outputJSON {
					if err := writeJSON(cmd.OutOrStdout(), checkins); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d mats\n", night, len(checkins))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&facilityID, "facility", "", "Facility ID")
	cmd.Flags().StringVar(&templateID, "template", "", "Template ID")
	cmd.Flags().StringVar(&date, "date", "", "First night (YYYY-MM-DD)")
	cmd.Flags().IntVar(&days, "days", 1, "Number of consecutive nights")
	_ = cmd.MarkFlagRequired("facility")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

// nights returns count consecutive dates starting at start
func nights(start entities.Date, count int) []entities.Date {
	out := make([]entities.Date, 0, count)
	for i := 0; i < count; i++ {
		t := start.Time.AddDate(0, 0, i)
		out = append(out, entities.NewDate(t.Year(), t.Month(), t.Day()))
	}
	return out
}
