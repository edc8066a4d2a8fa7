package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))
	loadDotEnv()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadDotEnv loads .env (or the given files) into the environment and
// reports whether it did.
func loadDotEnv(filenames ...string) bool {
	if err := godotenv.Load(filenames...); err != nil {
		slog.Debug("No .env file found, using environment variables", "error", err)
		return false
	}
	return true
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "farmerchat",
		Short:        "Ask the Farmer.Chat advisor and generate village alerts from the terminal",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(askCmd())
	root.AddCommand(exportPDFCmd())
	root.AddCommand(locationsCmd())
	root.AddCommand(alertCmd())
	root.AddCommand(versionCmd())
	return root
}
