package main

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/jazz-grammar/internal/config"
	"github.com/Conceptual-Machines/jazz-grammar/internal/grammar"
	"github.com/spf13/cobra"
)

type exploreLevel struct {
	Level     int        `json:"level"`
	Count     int        `json:"count"`
	Sequences [][]string `json:"sequences"`
}

type exploreOutput struct {
	Depth  int            `json:"depth"`
	Levels []exploreLevel `json:"levels"`
}

func exploreCmd(cfg *config.Config) *cobra.Command {
	var (
		input inputFlags
		depth int
	)

	cmd := &cobra.Command{
		Use:   "explore <progression>",
		Short: "List every progression reachable within a number of rewrites",
		Long: `Explore walks rewrites breadth-first. Level 0 is the input; level N lists
the progressions first reached after N rewrites, each shown once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if depth > cfg.MaxDepth {
				return fmt.Errorf("%w: %d (max %d)", grammar.ErrInvalidDepth, depth, cfg.MaxDepth)
			}
			p, _, err := input.parse(args[0])
			if err != nil {
				return err
			}
			levels, err := grammar.Explore(p, depth)
			if err != nil {
				return err
			}

			out := exploreOutput{Depth: depth}
			for _, level := range levels {
				sequences := make([][]string, len(level.Progressions))
				for i, seq := range level.Progressions {
					sequences[i] = seq.Tokens()
				}
				out.Levels = append(out.Levels, exploreLevel{
					Level:     level.Depth,
					Count:     len(sequences),
					Sequences: sequences,
				})
			}

			w := cmd.OutOrStdout()
			if input.asJSON {
				return writeJSON(w, out)
			}

			fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Depth search (max depth = %d)", depth)))
			for _, level := range out.Levels {
				noun := "sequences"
				if level.Count == 1 {
					noun = "sequence"
				}
				fmt.Fprintf(w, "\n%s\n", titleStyle.Render(fmt.Sprintf("Level %d (%d %s)", level.Level, level.Count, noun)))
				if level.Count == 0 {
					fmt.Fprintln(w, labelStyle.Render("  (none)"))
					continue
				}
				for i, seq := range level.Sequences {
					fmt.Fprintf(w, "  %d. %s\n", i+1, strings.Join(seq, " / "))
				}
			}
			return nil
		},
	}

	input.register(cmd, cfg)
	cmd.Flags().IntVar(&depth, "depth", grammar.DefaultDepth, "number of rewrite generations")
	return cmd
}
