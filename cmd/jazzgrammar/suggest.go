package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Conceptual-Machines/jazz-grammar/internal/config"
	"github.com/Conceptual-Machines/jazz-grammar/internal/grammar"
	"github.com/spf13/cobra"
)

type suggestionOutput struct {
	Rule        grammar.RuleID     `json:"rule"`
	Span        grammar.Span       `json:"span"`
	Before      []string           `json:"before"`
	Replacement []string           `json:"replacement"`
	Result      []string           `json:"result"`
	Next        []suggestionOutput `json:"next,omitempty"`
}

func toSuggestionOutput(in []grammar.Suggestion) []suggestionOutput {
	out := make([]suggestionOutput, 0, len(in))
	for _, s := range in {
		out = append(out, suggestionOutput{
			Rule:        s.Rule,
			Span:        s.Span,
			Before:      s.Before.Tokens(),
			Replacement: s.Replacement.Tokens(),
			Result:      s.Result.Tokens(),
			Next:        toSuggestionOutput(s.Next),
		})
	}
	return out
}

func suggestCmd(cfg *config.Config) *cobra.Command {
	var (
		input    inputFlags
		depth    int
		parallel bool
	)

	cmd := &cobra.Command{
		Use:   "suggest <progression>",
		Short: "Show each single-rule rewrite of a progression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if depth > cfg.MaxDepth {
				return fmt.Errorf("%w: %d (max %d)", grammar.ErrInvalidDepth, depth, cfg.MaxDepth)
			}
			p, _, err := input.parse(args[0])
			if err != nil {
				return err
			}

			var suggestions []grammar.Suggestion
			if parallel {
				suggestions, err = grammar.ExpandParallel(cmd.Context(), p, depth)
			} else {
				suggestions, err = grammar.Expand(p, depth)
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if input.asJSON {
				return writeJSON(w, toSuggestionOutput(suggestions))
			}
			if len(suggestions) == 0 {
				fmt.Fprintln(w, "No applicable next-step rewrites found.")
				return nil
			}
			printSuggestions(w, suggestions, "")
			return nil
		},
	}

	input.register(cmd, cfg)
	cmd.Flags().IntVar(&depth, "depth", grammar.DefaultDepth, "number of rewrite generations")
	cmd.Flags().BoolVar(&parallel, "parallel", cfg.ParallelRules, "evaluate rules concurrently")
	return cmd
}

func printSuggestions(w io.Writer, suggestions []grammar.Suggestion, indent string) {
	for i, s := range suggestions {
		heading := fmt.Sprintf("%d. Rule %s @ chords %d-%d", i+1, s.Rule, s.Span.Start+1, s.Span.End)
		fmt.Fprintf(w, "%s%s\n", indent, titleStyle.Render(heading))
		fmt.Fprintf(w, "%s   %s %s\n", indent, labelStyle.Render("before:     "), strings.Join(s.Before.Tokens(), " "))
		fmt.Fprintf(w, "%s   %s %s\n", indent, labelStyle.Render("replacement:"), strings.Join(s.Replacement.Tokens(), " "))
		fmt.Fprintf(w, "%s   %s %s\n", indent, labelStyle.Render("result:     "), markStyle.Render(s.MarkedResult()))
		if len(s.Next) > 0 {
			printSuggestions(w, s.Next, indent+"    ")
		}
	}
}
