package analysis

import (
	"fmt"
	"strings"

	"github.com/abdulachik/litlens/internal/profile"
)

// Prompt is what gets sent to the service: a fixed system instruction and a
// per-request user message.
type Prompt struct {
	System string
	User   string
}

// promptData is the value the profile's user template is executed against.
type promptData struct {
	OriginalText        string
	LectureScript       string
	TargetSequenceCount int
	Language            string
}

// BuildPrompt assembles the prompt for req under profile p. Both texts are
// embedded verbatim.
func BuildPrompt(p *profile.Profile, req Request) (Prompt, error) {
	var user strings.Builder
	err := p.Template().Execute(&user, promptData{
		OriginalText:        req.OriginalText,
		LectureScript:       req.LectureScript,
		TargetSequenceCount: req.TargetSequenceCount,
		Language:            p.Language,
	})
	if err != nil {
		return Prompt{}, fmt.Errorf("execute user template: %w", err)
	}

	return Prompt{
		System: strings.TrimSpace(p.SystemInstruction),
		User:   user.String(),
	}, nil
}
