package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abdulachik/litlens/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		LLMProvider:    "gemini",
		LLMTimeout:     time.Minute,
		ListenAddr:     ":0",
		AccessPassword: "pw",
		CSRFKey:        strings.Repeat("c", 32),
		SessionKey:     strings.Repeat("s", 32),
		SessionTTL:     time.Hour,
	}
}

func TestNew(t *testing.T) {
	t.Run("embedded profile", func(t *testing.T) {
		a, err := New(testConfig())
		require.NoError(t, err)

		assert.Equal(t, "default", a.Profiles.Current().Name)
		assert.Equal(t, a.Profiles.Current(), a.Analyzer.Profile())
	})

	t.Run("profile from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profile.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: custom\nlanguage: English\n"), 0o644))

		cfg := testConfig()
		cfg.ProfilePath = path

		a, err := New(cfg)
		require.NoError(t, err)
		assert.Equal(t, "custom", a.Analyzer.Profile().Name)
	})

	t.Run("missing profile file", func(t *testing.T) {
		cfg := testConfig()
		cfg.ProfilePath = filepath.Join(t.TempDir(), "missing.yaml")

		_, err := New(cfg)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "load profile")
	})
}

func TestApp_NewWebServer(t *testing.T) {
	a, err := New(testConfig())
	require.NoError(t, err)

	srv, err := a.NewWebServer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	cfg := testConfig()
	cfg.AccessPassword = ""
	a.Config = cfg
	_, err = a.NewWebServer()
	assert.Error(t, err)
}
