package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ashureev/farmerchat/internal/domain"
	"github.com/ashureev/farmerchat/internal/page"
	"github.com/ashureev/farmerchat/internal/render"
	"github.com/spf13/cobra"
)

var errBlankQuery = errors.New("query must not be empty")

func askCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Ask the advisor a question about farming in Guntur Fields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, strings.Join(args, " "), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", formatText, "Output format: text, json or yaml")
	return cmd
}

func runAsk(cmd *cobra.Command, query, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	if strings.TrimSpace(query) == "" {
		return errBlankQuery
	}

	b, err := openBackends()
	if err != nil {
		return err
	}

	resp, err := b.queries.Query(context.Background(), domain.NewQueryRequest(query))
	if err != nil {
		return fmt.Errorf("%s: %w", page.QueryErrorMessage(err), err)
	}

	return writeOutput(cmd.OutOrStdout(), format, resp, func(w io.Writer) error {
		return printAdvice(w, resp)
	})
}

func printAdvice(w io.Writer, resp *domain.QueryResponse) error {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(resp.Advice))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Intent:         %s\n", resp.Routing.Intent)
	fmt.Fprintf(&sb, "Execution time: %s\n", render.FormatSeconds(resp.ExecutionTimeSeconds))
	sb.WriteString("Servers:       ")
	for _, b := range render.Badges(resp.Routing, resp.Data) {
		mark := "❌"
		if b.OK {
			mark = "✅"
		}
		fmt.Fprintf(&sb, " %s %s", mark, b.Server)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Status:         %s\n", render.ServerSummary(resp.Routing, resp.Data))
	_, err := io.WriteString(w, sb.String())
	return err
}
