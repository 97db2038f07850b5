// Package render turns an analysis result into its plain-text and document
// layouts.
package render

import (
	"fmt"
	"strings"

	"github.com/abdulachik/litlens/internal/analysis"
	"github.com/abdulachik/litlens/internal/profile"
)

// Text renders r in the fixed report layout. Every line ends in a newline.
func Text(r *analysis.Result, labels profile.Labels) string {
	var b strings.Builder

	b.WriteString(r.Title(labels.FallbackTitle))
	b.WriteString("\n\n")

	for i, seq := range r.Sequences {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, l := range sequenceLines(r, seq, labels) {
			b.WriteString(l.text)
			b.WriteString("\n")
		}
	}

	return b.String()
}

type lineKind int

const (
	lineHeader lineKind = iota
	lineCore
	lineDetail
	lineBreak
)

type line struct {
	kind lineKind
	text string
}

// sequenceLines is shared by the text and document layouts so both stay in
// step.
func sequenceLines(r *analysis.Result, seq analysis.Sequence, labels profile.Labels) []line {
	lines := []line{
		{lineHeader, fmt.Sprintf("<%s%d> %s", labels.Sequence, seq.SeqID, seq.Summary)},
		{lineCore, fmt.Sprintf("%s : %s (%s)", labels.Core, seq.CoreMessage, seq.ThemeKeyword)},
	}

	for _, d := range seq.Details {
		lines = append(lines, line{lineDetail, fmt.Sprintf("-%s = %s", d.Fact, d.Interpretation)})
	}

	if r.BreaksAfter(seq.SeqID) {
		bp := r.BreakPoint
		lines = append(lines,
			line{lineBreak, bp.Description},
			line{lineBreak, fmt.Sprintf("%s = %s", labels.Before, bp.ChangeState.Before)},
			line{lineBreak, fmt.Sprintf("%s = %s", labels.After, bp.ChangeState.After)},
		)
	}

	return lines
}
