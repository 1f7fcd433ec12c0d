package main

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/jazz-grammar/internal/config"
	"github.com/Conceptual-Machines/jazz-grammar/internal/grammar"
	"github.com/spf13/cobra"
)

func realizeCmd(cfg *config.Config) *cobra.Command {
	var (
		input       inputFlags
		key         string
		showUnitOne bool
	)

	cmd := &cobra.Command{
		Use:   "realize <progression>",
		Short: "Spell a Roman-numeral progression as chord symbols in a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := input.parse(args[0])
			if err != nil {
				return err
			}
			chords, err := grammar.Realize(p, key, showUnitOne)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if input.asJSON {
				return writeJSON(w, map[string]interface{}{"key": key, "chords": chords})
			}
			fmt.Fprintln(w, strings.Join(chords, " / "))
			return nil
		},
	}

	input.register(cmd, cfg)
	cmd.Flags().StringVarP(&key, "key", "k", "C", "major key, e.g. C, Bb, F#")
	cmd.Flags().BoolVar(&showUnitOne, "show-unit", false, "print @1 durations")
	return cmd
}
