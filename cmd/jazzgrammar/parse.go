package main

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/jazz-grammar/internal/config"
	"github.com/Conceptual-Machines/jazz-grammar/internal/grammar"
	"github.com/spf13/cobra"
)

type parseOutput struct {
	Notation grammar.Notation `json:"notation"`
	Tokens   []string         `json:"tokens"`
	Total    grammar.Duration `json:"total"`
	Grid     string           `json:"grid,omitempty"`
}

func parseCmd(cfg *config.Config) *cobra.Command {
	var (
		input    inputFlags
		showGrid bool
	)

	cmd := &cobra.Command{
		Use:   "parse <progression>",
		Short: "Normalize a progression and optionally render it as a grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, notation, err := input.parse(args[0])
			if err != nil {
				return err
			}

			total, err := p.Total()
			if err != nil {
				return err
			}
			out := parseOutput{
				Notation: notation,
				Tokens:   p.FullTokens(),
				Total:    total,
			}
			if showGrid {
				grid, err := grammar.RenderGrid(p, input.gridOptions())
				if err != nil {
					return err
				}
				out.Grid = grid
			}

			w := cmd.OutOrStdout()
			if input.asJSON {
				return writeJSON(w, out)
			}
			fmt.Fprintf(w, "%s %s\n", labelStyle.Render("notation:"), out.Notation)
			fmt.Fprintf(w, "%s   %s\n", labelStyle.Render("tokens:"), strings.Join(out.Tokens, " / "))
			fmt.Fprintf(w, "%s    %s\n", labelStyle.Render("total:"), out.Total)
			if out.Grid != "" {
				fmt.Fprintln(w, out.Grid)
			}
			return nil
		},
	}

	input.register(cmd, cfg)
	cmd.Flags().BoolVar(&showGrid, "grid", false, "also render grid notation")
	return cmd
}
