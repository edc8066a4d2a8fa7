package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ashureev/farmerchat/internal/domain"
	"github.com/ashureev/farmerchat/internal/page"
	"github.com/ashureev/farmerchat/internal/render"
	"github.com/spf13/cobra"
)

func alertCmd() *cobra.Command {
	var district, village, format string
	cmd := &cobra.Command{
		Use:   "alert",
		Short: "Generate the agricultural alert summary for a village",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlert(cmd, district, village, format)
		},
	}
	cmd.Flags().StringVar(&district, "district", "", "District the village belongs to")
	cmd.Flags().StringVar(&village, "village", "", "Village or town to generate the alert for")
	cmd.Flags().StringVarP(&format, "format", "o", formatText, "Output format: text, json or yaml")
	_ = cmd.MarkFlagRequired("district")
	_ = cmd.MarkFlagRequired("village")
	return cmd
}

func runAlert(cmd *cobra.Command, district, village, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	if strings.TrimSpace(district) == "" || strings.TrimSpace(village) == "" {
		return fmt.Errorf("both --district and --village are required")
	}

	b, err := openBackends()
	if err != nil {
		return err
	}

	resp, err := b.alerts.GenerateAlert(context.Background(), domain.AlertRequest{
		LocationName: village,
		District:     district,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", page.AlertErrorMessage(err), err)
	}

	return writeOutput(cmd.OutOrStdout(), format, resp, func(w io.Writer) error {
		return printAlert(w, resp, b)
	})
}

func printAlert(w io.Writer, resp *domain.AlertResponse, b *backends) error {
	_, err := fmt.Fprintf(w, "Location:     %s\nCoordinates:  %s\nGenerated at: %s\n\n%s\n",
		resp.Location,
		render.FormatCoordinates(resp.Coordinates),
		render.FormatTimestamp(resp.Timestamp, b.cfg.Display.Location),
		resp.AlertSummary)
	return err
}
