package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ashureev/farmerchat/internal/domain"
	"github.com/ashureev/farmerchat/internal/page"
	"github.com/ashureev/farmerchat/internal/render"
	"github.com/spf13/cobra"
)

func exportPDFCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export-pdf <query>",
		Short: "Download the advisory for a query as a PDF",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportPDF(cmd, strings.Join(args, " "), dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write the PDF into")
	return cmd
}

func runExportPDF(cmd *cobra.Command, query, dir string) error {
	if strings.TrimSpace(query) == "" {
		return errBlankQuery
	}

	b, err := openBackends()
	if err != nil {
		return err
	}

	pdf, err := b.queries.ExportPDF(context.Background(), domain.NewQueryRequest(query))
	if err != nil {
		return fmt.Errorf("%s: %w", page.ExportErrorMessage(err), err)
	}

	path := filepath.Join(dir, render.ExportFilename(time.Now()))
	if err := os.WriteFile(path, pdf.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
