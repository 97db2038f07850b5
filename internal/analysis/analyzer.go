package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abdulachik/litlens/internal/llm"
	"github.com/abdulachik/litlens/internal/profile"
)

// ProfileSource supplies the profile an analysis runs under.
type ProfileSource interface {
	Current() *profile.Profile
}

// CompleterFactory builds a service client for one credential.
type CompleterFactory func(ctx context.Context, apiKey string) (llm.Completer, error)

// Analyzer runs the prompt, call, extract and parse pipeline. It keeps no
// state between calls.
type Analyzer struct {
	profiles     ProfileSource
	newCompleter CompleterFactory
	provider     string
	model        string
}

// Config holds configuration for the analyzer.
type Config struct {
	Profiles ProfileSource

	// LLM is the provider template; its APIKey is replaced per call.
	LLM llm.Config

	// NewCompleter overrides client construction. Defaults to llm.New.
	NewCompleter CompleterFactory
}

// New creates a new Analyzer.
func New(cfg Config) *Analyzer {
	factory := cfg.NewCompleter
	if factory == nil {
		template := cfg.LLM
		factory = func(ctx context.Context, apiKey string) (llm.Completer, error) {
			c := template
			c.APIKey = apiKey
			return llm.New(ctx, c)
		}
	}

	model := cfg.LLM.Model
	if model == "" {
		model = llm.DefaultModel(cfg.LLM.Provider)
	}

	return &Analyzer{
		profiles:     cfg.Profiles,
		newCompleter: factory,
		provider:     cfg.LLM.Provider,
		model:        model,
	}
}

// Profile returns the profile the next analysis will use.
func (a *Analyzer) Profile() *profile.Profile {
	return a.profiles.Current()
}

// Analyze runs AnalyzeWith against the current profile.
func (a *Analyzer) Analyze(ctx context.Context, apiKey string, req Request) (*Result, error) {
	return a.AnalyzeWith(ctx, a.profiles.Current(), apiKey, req)
}

// AnalyzeWith sends req to the service with apiKey, prompting from p, and
// returns the parsed result. Callers that render the result should pass the
// same snapshot they render with. Precondition failures return before
// anything is sent; every other failure is an *Error.
func (a *Analyzer) AnalyzeWith(ctx context.Context, p *profile.Profile, apiKey string, req Request) (*Result, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingCredential
	}
	if strings.TrimSpace(req.OriginalText) == "" || strings.TrimSpace(req.LectureScript) == "" {
		return nil, ErrMissingText
	}

	prompt, err := BuildPrompt(p, req)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	completer, err := a.newCompleter(ctx, apiKey)
	if err != nil {
		return nil, newError(KindService, err)
	}

	slog.Info("starting analysis",
		"provider", a.provider,
		"model", a.model,
		"profile", p.Name,
		"original_chars", len([]rune(req.OriginalText)),
		"script_chars", len([]rune(req.LectureScript)),
		"target_sequences", req.TargetSequenceCount,
	)
	start := time.Now()

	reply, err := completer.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		slog.Error("analysis call failed", "error", err, "elapsed", time.Since(start))
		return nil, newError(KindService, err)
	}

	slog.Debug("received reply", "bytes", len(reply), "elapsed", time.Since(start))

	result, err := DecodeReply(reply)
	if err != nil {
		slog.Warn("could not decode reply", "error", err, "bytes", len(reply))
		return nil, err
	}

	slog.Info("analysis complete",
		"title", result.Metadata.Title,
		"sequences", len(result.Sequences),
		"break_point", result.BreakPoint != nil,
		"elapsed", time.Since(start),
	)

	return result, nil
}

// DecodeReply extracts and parses the JSON object in a raw service reply.
func DecodeReply(reply string) (*Result, error) {
	candidate, err := ExtractJSON(reply)
	if err != nil {
		return nil, newError(KindNoJSON, err)
	}
	return ParseResult(candidate)
}
