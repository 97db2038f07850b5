package app

import (
	"fmt"

	"github.com/abdulachik/litlens/internal/analysis"
	"github.com/abdulachik/litlens/internal/config"
	"github.com/abdulachik/litlens/internal/llm"
	"github.com/abdulachik/litlens/internal/profile"
	"github.com/abdulachik/litlens/internal/web"
)

// App is the main application container holding all dependencies.
type App struct {
	Config   *config.Config
	Profiles *profile.Store
	Analyzer *analysis.Analyzer
}

// New creates a new application instance with all dependencies wired up.
func New(cfg *config.Config) (*App, error) {
	profiles, err := profile.NewStore(cfg.ProfilePath)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	analyzer := analysis.New(analysis.Config{
		Profiles: profiles,
		LLM: llm.Config{
			Provider: cfg.LLMProvider,
			Model:    cfg.LLMModel,
			Timeout:  cfg.LLMTimeout,
		},
	})

	return &App{
		Config:   cfg,
		Profiles: profiles,
		Analyzer: analyzer,
	}, nil
}

// NewWebServer builds the HTTP surface from the app's configuration.
func (a *App) NewWebServer() (*web.Server, error) {
	gate, err := web.NewGate(a.Config.AccessPassword, a.Config.AccessPasswordHash)
	if err != nil {
		return nil, err
	}

	return web.NewServer(web.Config{
		Analyzer:      a.Analyzer,
		Profiles:      a.Profiles,
		Gate:          gate,
		Sessions:      web.NewSessionStore([]byte(a.Config.SessionKey), a.Config.SessionTTL, a.Config.SecureCookies),
		CSRFKey:       []byte(a.Config.CSRFKey),
		SecureCookies: a.Config.SecureCookies,
	})
}
