package main

import (
	"encoding/json"
	"io"

	"github.com/Conceptual-Machines/jazz-grammar/internal/config"
	"github.com/Conceptual-Machines/jazz-grammar/internal/grammar"
	"github.com/spf13/cobra"
)

// inputFlags are shared by every command that reads a progression argument.
type inputFlags struct {
	notation        string
	beatsPerBar     int
	maxSubdivisions int
	maxBars         int
	asJSON          bool
}

func (f *inputFlags) register(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVar(&f.notation, "notation", string(grammar.NotationAuto), "input notation: auto, duration, or grid")
	cmd.Flags().IntVar(&f.beatsPerBar, "beats-per-bar", cfg.DefaultBeatsPerBar, "beats per bar in grid notation")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "emit JSON output")
	f.maxSubdivisions = cfg.MaxGridSubdivisions
	f.maxBars = cfg.MaxGridBars
}

func (f *inputFlags) gridOptions() grammar.GridOptions {
	opts := grammar.DefaultGridOptions()
	opts.BeatsPerBar = f.beatsPerBar
	opts.MaxSubdivisions = f.maxSubdivisions
	if f.maxBars > 0 {
		opts.MaxBars = f.maxBars
	}
	return opts
}

func (f *inputFlags) parse(arg string) (grammar.Progression, grammar.Notation, error) {
	mode, err := grammar.ParseNotation(f.notation)
	if err != nil {
		return nil, "", err
	}
	return grammar.ParseText(arg, mode, f.gridOptions())
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
