package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mut-digital/mutbot/pkg/cli/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mutbot.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestAppConfigDefaults(t *testing.T) {
	var cfg config.AppConfig

	messages, patterns, err := cfg.Configure()
	gt.NoError(t, err).Required()

	gt.Bool(t, messages.RetrievalUnavailable != "").True()
	gt.Bool(t, messages.EmptyAnswer != "").True()
	gt.Number(t, len(patterns.Recurring)).Greater(0)
	gt.Number(t, len(patterns.RangeConnectors)).Greater(0)
}

func TestAppConfigOverrides(t *testing.T) {
	path := writeConfigFile(t, `
[messages]
retrieval_unavailable = "Sistema en mantención, vuelve pronto."

[events]
recurring_phrases = ["todos los días", "feria permanente"]
`)

	var cfg config.AppConfig
	gt.NoError(t, cfg.Load(path)).Required()

	messages, patterns, err := cfg.Configure()
	gt.NoError(t, err).Required()

	gt.Value(t, messages.RetrievalUnavailable).Equal("Sistema en mantención, vuelve pronto.")
	// Unset fields keep their defaults
	gt.Bool(t, messages.EmptyAnswer != "").True()

	gt.Array(t, patterns.Recurring).Length(2)
	gt.Value(t, patterns.Recurring[1]).Equal("feria permanente")
	gt.Number(t, len(patterns.RangeConnectors)).Greater(0)
}

func TestAppConfigMalformedFile(t *testing.T) {
	path := writeConfigFile(t, `[messages`)

	var cfg config.AppConfig
	gt.Error(t, cfg.Load(path))
}

func TestAppConfigMissingFile(t *testing.T) {
	var cfg config.AppConfig
	gt.Error(t, cfg.Load(filepath.Join(t.TempDir(), "missing.toml")))
}
