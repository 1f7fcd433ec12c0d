package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Conceptual-Machines/jazz-grammar/internal/config"
	"github.com/Conceptual-Machines/jazz-grammar/internal/grammar"
	"github.com/Conceptual-Machines/jazz-grammar/internal/logger"
	"github.com/Conceptual-Machines/jazz-grammar/internal/metrics"
	"github.com/gin-gonic/gin"
)

const (
	unitBeats = "beats"
	unitBars  = "bars"

	kindInvalidRequest = "invalid_request"
)

// errInvalidRequest marks request-shape problems that are not grammar errors.
var errInvalidRequest = errors.New("invalid request")

func invalidRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errInvalidRequest, fmt.Sprintf(format, args...))
}

// ProgressionRequest is the body of /api/parse and /api/suggest.
// Progression is either a string (duration or grid notation) or a JSON array
// of tokens and {chord, duration} records.
type ProgressionRequest struct {
	Progression  json.RawMessage   `json:"progression"`
	DurationUnit string            `json:"durationUnit"`
	BeatsPerBar  *grammar.Duration `json:"beatsPerBar"`
	NotationMode string            `json:"notationMode"`
	Key          string            `json:"key"`
	Depth        *int              `json:"depth"`
}

// Block shows one progression three ways: canonical beats, the request's
// display unit (realized into a key when one was given), and grid notation.
type Block struct {
	Beats   []string `json:"beats"`
	Display []string `json:"display"`
	Grid    string   `json:"grid"`
}

type Meta struct {
	NotationMode string `json:"notationMode"`
	DurationUnit string `json:"durationUnit"`
	BeatsPerBar  string `json:"beatsPerBar"`
	Key          string `json:"key,omitempty"`
	Depth        int    `json:"depth,omitempty"`
}

type ParseResponse struct {
	Progression Block `json:"progression"`
	Meta        Meta  `json:"meta"`
}

type SuggestionResponse struct {
	ID              string               `json:"id"`
	Rule            grammar.RuleID       `json:"rule"`
	Span            grammar.Span         `json:"span"`
	ReplacementSpan grammar.Span         `json:"replacementSpanInResult"`
	Before          Block                `json:"before"`
	Replacement     Block                `json:"replacement"`
	Result          Block                `json:"result"`
	Summary         string               `json:"summary"`
	Next            []SuggestionResponse `json:"next,omitempty"`
}

type SuggestResponse struct {
	Base        Block                `json:"base"`
	Suggestions []SuggestionResponse `json:"suggestions"`
	Meta        Meta                 `json:"meta"`
}

type RuleResponse struct {
	ID          grammar.RuleID `json:"id"`
	Description string         `json:"description"`
}

type GrammarHandler struct {
	cfg      *config.Config
	recorder *metrics.Recorder
}

// NewGrammarHandler wires the grammar endpoints. recorder may be nil.
func NewGrammarHandler(cfg *config.Config, recorder *metrics.Recorder) *GrammarHandler {
	return &GrammarHandler{
		cfg:      cfg,
		recorder: recorder,
	}
}

// parsedRequest is a validated ProgressionRequest with the progression in beats.
type parsedRequest struct {
	progression grammar.Progression
	notation    grammar.Notation
	unit        string
	displayUnit string
	beatsPerBar grammar.Duration
	key         string
	grid        grammar.GridOptions
}

func (h *GrammarHandler) parseRequest(req ProgressionRequest) (*parsedRequest, error) {
	unit := strings.ToLower(strings.TrimSpace(req.DurationUnit))
	if unit == "" {
		unit = unitBeats
	}
	if unit != unitBeats && unit != unitBars {
		return nil, invalidRequest(`durationUnit must be "beats" or "bars"`)
	}

	beatsPerBar := grammar.Whole(int64(h.cfg.DefaultBeatsPerBar))
	if req.BeatsPerBar != nil {
		if !req.BeatsPerBar.IsPositive() {
			return nil, invalidRequest("beatsPerBar must be positive")
		}
		beatsPerBar = *req.BeatsPerBar
	}

	mode, err := grammar.ParseNotation(req.NotationMode)
	if err != nil {
		return nil, invalidRequest(`notationMode must be "auto", "duration", or "grid"`)
	}

	grid := grammar.GridOptions{
		BeatsPerBar:     h.cfg.DefaultBeatsPerBar,
		MaxSubdivisions: h.cfg.MaxGridSubdivisions,
		MaxBars:         h.cfg.MaxGridBars,
		UnitsPerBeat:    grammar.One,
	}
	if beatsPerBar.Den() == 1 {
		grid.BeatsPerBar = int(beatsPerBar.Num())
	}

	key := strings.TrimSpace(req.Key)
	if key != "" {
		if _, err := grammar.ParseKey(key); err != nil {
			return nil, err
		}
	}

	progression, notation, err := parseProgressionField(req.Progression, mode, grid)
	if err != nil {
		return nil, err
	}
	if len(progression) > h.cfg.MaxSlots {
		return nil, invalidRequest("progression has %d chords, more than the limit of %d", len(progression), h.cfg.MaxSlots)
	}

	if unit == unitBars && notation != grammar.NotationGrid {
		progression, err = scale(progression, beatsPerBar, grammar.Duration.Mul)
		if err != nil {
			return nil, err
		}
	}

	displayUnit := unitBeats
	if notation == grammar.NotationDuration {
		displayUnit = unit
	}

	return &parsedRequest{
		progression: progression,
		notation:    notation,
		unit:        unit,
		displayUnit: displayUnit,
		beatsPerBar: beatsPerBar,
		key:         key,
		grid:        grid,
	}, nil
}

func parseProgressionField(raw json.RawMessage, mode grammar.Notation, grid grammar.GridOptions) (grammar.Progression, grammar.Notation, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, "", invalidRequest("progression is required")
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, "", invalidRequest("progression must be a string or an array")
		}
		if strings.TrimSpace(text) == "" {
			return nil, "", invalidRequest("progression is required")
		}
		return grammar.ParseText(text, mode, grid)
	case '[':
		if mode == grammar.NotationGrid {
			return nil, "", invalidRequest("grid notation must be sent as a string")
		}
		p, err := grammar.ParseJSON(trimmed)
		return p, grammar.NotationDuration, err
	}
	return nil, "", invalidRequest("progression must be a string or an array")
}

// scale applies op(duration, factor) to every slot.
func scale(p grammar.Progression, factor grammar.Duration, op func(grammar.Duration, grammar.Duration) (grammar.Duration, error)) (grammar.Progression, error) {
	out := make(grammar.Progression, len(p))
	for i, t := range p {
		d, err := op(t.Duration, factor)
		if err != nil {
			return nil, err
		}
		out[i] = grammar.Timed(t.Chord, d)
	}
	return out, nil
}

func (r *parsedRequest) block(p grammar.Progression) Block {
	display := p
	if r.displayUnit == unitBars {
		if inBars, err := scale(p, r.beatsPerBar, grammar.Duration.Div); err == nil {
			display = inBars
		}
	}

	displayTokens := display.FullTokens()
	if r.key != "" {
		if realized, err := grammar.Realize(display, r.key, true); err == nil {
			displayTokens = realized
		}
	}

	grid, err := grammar.RenderGrid(p, r.grid)
	if err != nil {
		grid = ""
	}

	return Block{
		Beats:   nonNil(p.FullTokens()),
		Display: nonNil(displayTokens),
		Grid:    grid,
	}
}

func (r *parsedRequest) meta() Meta {
	return Meta{
		NotationMode: string(r.notation),
		DurationUnit: r.unit,
		BeatsPerBar:  r.beatsPerBar.String(),
		Key:          r.key,
	}
}

func nonNil(tokens []string) []string {
	if tokens == nil {
		return []string{}
	}
	return tokens
}

// Parse normalizes a progression without applying any rules.
func (h *GrammarHandler) Parse(c *gin.Context) {
	parsed, ok := h.bind(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, ParseResponse{
		Progression: parsed.block(parsed.progression),
		Meta:        parsed.meta(),
	})
}

// Suggest returns every distinct single-rule rewrite of the progression,
// nested depth generations deep.
func (h *GrammarHandler) Suggest(c *gin.Context) {
	var req ProgressionRequest
	parsed, ok := h.bindInto(c, &req)
	if !ok {
		return
	}

	depth := grammar.DefaultDepth
	if req.Depth != nil {
		depth = *req.Depth
	}
	if depth < 1 || depth > h.cfg.MaxDepth {
		h.fail(c, fmt.Errorf("%w: %d (must be between 1 and %d)", grammar.ErrInvalidDepth, depth, h.cfg.MaxDepth))
		return
	}

	ctx, finish := h.recorder.StartExpansion(c.Request.Context(), len(parsed.progression), depth)
	defer finish()

	start := time.Now()
	var (
		suggestions []grammar.Suggestion
		err         error
	)
	if h.cfg.ParallelRules {
		suggestions, err = grammar.ExpandParallel(ctx, parsed.progression, depth)
	} else {
		suggestions, err = grammar.Expand(parsed.progression, depth)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	elapsed := time.Since(start)

	byRule := make(map[string]int)
	countByRule(suggestions, byRule)
	total := 0
	for _, n := range byRule {
		total += n
	}
	logger.LogExpansion(len(parsed.progression), depth, total, elapsed, logger.WithContext(c))
	ruleFields := logger.WithContext(c)
	for rule, n := range byRule {
		ruleFields["rule_"+rule] = n
	}
	logger.Debug("Suggestions by rule", ruleFields)
	h.recorder.RecordExpansion(ctx, metrics.Expansion{
		Slots:       len(parsed.progression),
		Depth:       depth,
		Suggestions: total,
		ByRule:      byRule,
		Duration:    elapsed,
	})

	meta := parsed.meta()
	meta.Depth = depth
	c.JSON(http.StatusOK, SuggestResponse{
		Base:        parsed.block(parsed.progression),
		Suggestions: parsed.suggestions(suggestions),
		Meta:        meta,
	})
}

func (r *parsedRequest) suggestions(in []grammar.Suggestion) []SuggestionResponse {
	out := make([]SuggestionResponse, 0, len(in))
	for i, s := range in {
		resp := SuggestionResponse{
			ID:              fmt.Sprintf("%s-%d-%d-%d", s.Rule, s.Span.Start, s.Span.End, i+1),
			Rule:            s.Rule,
			Span:            s.Span,
			ReplacementSpan: s.ReplacementSpan,
			Before:          r.block(s.Before),
			Replacement:     r.block(s.Replacement),
			Result:          r.block(s.Result),
			Summary:         s.Summary(),
		}
		if len(s.Next) > 0 {
			resp.Next = r.suggestions(s.Next)
		}
		out = append(out, resp)
	}
	return out
}

// countByRule tallies suggestions at every level of the tree.
func countByRule(in []grammar.Suggestion, into map[string]int) {
	for _, s := range in {
		into[s.Rule.String()]++
		countByRule(s.Next, into)
	}
}

// Rules lists the rewrite rules in the order they are tried.
func (h *GrammarHandler) Rules(c *gin.Context) {
	rules := grammar.Rules()
	out := make([]RuleResponse, len(rules))
	for i, r := range rules {
		out[i] = RuleResponse{ID: r.ID(), Description: r.Description()}
	}
	c.JSON(http.StatusOK, gin.H{"rules": out})
}

func (h *GrammarHandler) bind(c *gin.Context) (*parsedRequest, bool) {
	var req ProgressionRequest
	return h.bindInto(c, &req)
}

func (h *GrammarHandler) bindInto(c *gin.Context, req *ProgressionRequest) (*parsedRequest, bool) {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		h.fail(c, invalidRequest("request body must be a JSON object: %v", err))
		return nil, false
	}
	parsed, err := h.parseRequest(*req)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return parsed, true
}

// fail writes a 400 with a stable error kind.
func (h *GrammarHandler) fail(c *gin.Context, err error) {
	kind := errorKind(err)

	fields := logger.WithContext(c)
	fields["kind"] = kind
	fields["error"] = err.Error()
	logger.Warn("Rejected progression", fields)

	h.recorder.RecordParseFailure(c.Request.Context(), kind)

	c.JSON(http.StatusBadRequest, gin.H{
		"error": err.Error(),
		"kind":  kind,
	})
}

func errorKind(err error) string {
	if errors.Is(err, errInvalidRequest) {
		return kindInvalidRequest
	}
	return grammar.Kind(err)
}
