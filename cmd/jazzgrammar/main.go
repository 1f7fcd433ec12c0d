package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Conceptual-Machines/jazz-grammar/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "jazzgrammar",
		Short: "Explore jazz chord-progression rewrites",
		Long: `jazzgrammar applies a small generative grammar for jazz chord sequences
to a progression written in Roman numerals, e.g. "I@4,IV@2,V7@2" or a grid
such as "| I / I / IV / V7 |".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(exploreCmd(cfg))
	root.AddCommand(suggestCmd(cfg))
	root.AddCommand(parseCmd(cfg))
	root.AddCommand(realizeCmd(cfg))
	return root
}

func main() {
	// .env is optional for the CLI
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(config.Load()).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
