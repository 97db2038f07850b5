package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// rawResult mirrors Result with pointer fields so missing keys can be told
// apart from zero values.
type rawResult struct {
	Metadata *struct {
		Title *string `json:"title"`
	} `json:"metadata"`
	BreakPoint *rawBreakPoint `json:"structure_break_point"`
	Sequences  []rawSequence  `json:"sequences"`
}

type rawBreakPoint struct {
	AfterSequence *int    `json:"after_sequence"`
	Description   *string `json:"description"`
	ChangeState   *struct {
		Before *string `json:"before"`
		After  *string `json:"after"`
	} `json:"change_state"`
}

type rawSequence struct {
	SeqID        *int        `json:"seq_id"`
	Summary      *string     `json:"summary"`
	CoreMessage  *string     `json:"core_message"`
	ThemeKeyword *string     `json:"theme_keyword"`
	Details      []rawDetail `json:"details"`
}

type rawDetail struct {
	Fact           *string `json:"fact"`
	Interpretation *string `json:"interpretation"`
}

var errNotObject = errors.New("top-level value is not an object")

// ParseResult decodes an extracted JSON object into a Result. Optional
// fields default; a missing required field is a KindSchema error. A break
// point without after_sequence is treated as absent, and its change_state is
// only required when after_sequence names a parsed sequence.
func ParseResult(candidate string) (*Result, error) {
	var raw rawResult
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			return nil, newError(KindMalformedJSON, err)
		case errors.As(err, &typeErr) && typeErr.Field == "":
			return nil, newError(KindSchema, errNotObject)
		default:
			return nil, newError(KindSchema, err)
		}
	}
	// null decodes into a struct without error.
	if !strings.HasPrefix(strings.TrimSpace(candidate), "{") {
		return nil, newError(KindSchema, errNotObject)
	}

	result := &Result{}

	if raw.Metadata != nil && raw.Metadata.Title != nil {
		result.Metadata.Title = *raw.Metadata.Title
	}

	result.Sequences = make([]Sequence, 0, len(raw.Sequences))
	for i, rs := range raw.Sequences {
		seq, err := convertSequence(rs)
		if err != nil {
			return nil, newError(KindSchema, fmt.Errorf("sequences[%d]: %w", i, err))
		}
		result.Sequences = append(result.Sequences, seq)
	}

	if raw.BreakPoint != nil && raw.BreakPoint.AfterSequence != nil {
		bp, err := convertBreakPoint(raw.BreakPoint, result.Sequences)
		if err != nil {
			return nil, newError(KindSchema, err)
		}
		result.BreakPoint = bp
	}

	return result, nil
}

// convertBreakPoint keeps whatever the model supplied. The change states are
// required only when the break point follows one of the sequences, since an
// unmatched break point is never rendered.
func convertBreakPoint(raw *rawBreakPoint, seqs []Sequence) (*BreakPoint, error) {
	bp := &BreakPoint{AfterSequence: *raw.AfterSequence}
	if raw.Description != nil {
		bp.Description = *raw.Description
	}

	matched := false
	for _, seq := range seqs {
		if seq.SeqID == bp.AfterSequence {
			matched = true
			break
		}
	}

	cs := raw.ChangeState
	if matched {
		switch {
		case cs == nil:
			return nil, fmt.Errorf("structure_break_point: missing change_state")
		case cs.Before == nil:
			return nil, fmt.Errorf("structure_break_point: missing change_state.before")
		case cs.After == nil:
			return nil, fmt.Errorf("structure_break_point: missing change_state.after")
		}
	}

	if cs != nil {
		if cs.Before != nil {
			bp.ChangeState.Before = *cs.Before
		}
		if cs.After != nil {
			bp.ChangeState.After = *cs.After
		}
	}
	return bp, nil
}

func convertSequence(raw rawSequence) (Sequence, error) {
	switch {
	case raw.SeqID == nil:
		return Sequence{}, fmt.Errorf("missing seq_id")
	case raw.Summary == nil:
		return Sequence{}, fmt.Errorf("missing summary")
	case raw.CoreMessage == nil:
		return Sequence{}, fmt.Errorf("missing core_message")
	case raw.ThemeKeyword == nil:
		return Sequence{}, fmt.Errorf("missing theme_keyword")
	}

	seq := Sequence{
		SeqID:        *raw.SeqID,
		Summary:      *raw.Summary,
		CoreMessage:  *raw.CoreMessage,
		ThemeKeyword: *raw.ThemeKeyword,
		Details:      make([]Detail, 0, len(raw.Details)),
	}

	for j, rd := range raw.Details {
		if rd.Fact == nil {
			return Sequence{}, fmt.Errorf("details[%d]: missing fact", j)
		}
		if rd.Interpretation == nil {
			return Sequence{}, fmt.Errorf("details[%d]: missing interpretation", j)
		}
		seq.Details = append(seq.Details, Detail{
			Fact:           *rd.Fact,
			Interpretation: *rd.Interpretation,
		})
	}

	return seq, nil
}
