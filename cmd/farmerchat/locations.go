package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ashureev/farmerchat/internal/domain"
	"github.com/ashureev/farmerchat/internal/page"
	"github.com/spf13/cobra"
)

func locationsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "List the districts and villages alerts can be generated for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocations(cmd, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", formatText, "Output format: text, json or yaml")
	return cmd
}

func runLocations(cmd *cobra.Command, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	b, err := openBackends()
	if err != nil {
		return err
	}

	catalog, err := b.alerts.Locations(context.Background())
	if err != nil {
		return fmt.Errorf("%s: %w", page.MsgLocationsFailed, err)
	}

	return writeOutput(cmd.OutOrStdout(), format, catalog, func(w io.Writer) error {
		return printCatalog(w, catalog)
	})
}

func printCatalog(w io.Writer, catalog *domain.LocationCatalog) error {
	names := catalog.DistrictNames()
	if len(names) == 0 {
		_, err := fmt.Fprintln(w, "No locations found.")
		return err
	}
	for _, district := range names {
		if _, err := fmt.Fprintf(w, "%s: %s\n", district, strings.Join(catalog.Villages(district), ", ")); err != nil {
			return err
		}
	}
	return nil
}
