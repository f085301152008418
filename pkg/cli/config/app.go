package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/mut-digital/mutbot/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
)

// AppConfig is the optional TOML file overriding the bot's canned replies
// and the phrase sets of the events validity filter. Every field is an
// override; anything left empty keeps its default.
type AppConfig struct {
	Messages MessagesSection `toml:"messages"`
	Events   EventsSection   `toml:"events"`

	path string
}

// MessagesSection overrides canned user-facing replies
type MessagesSection struct {
	RetrievalUnavailable string `toml:"retrieval_unavailable"`
	EmptyAnswer          string `toml:"empty_answer"`
}

// EventsSection overrides the validity filter phrase sets
type EventsSection struct {
	RecurringPhrases []string `toml:"recurring_phrases"`
	RangeConnectors  []string `toml:"range_connectors"`
}

// Flags returns CLI flags for the app configuration file
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML configuration file (optional)",
			Sources:     cli.EnvVars("MUTBOT_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Load reads and parses the TOML file at path into the config.
func (a *AppConfig) Load(path string) error {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}
	if err := toml.Unmarshal(data, a); err != nil {
		return goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}
	return nil
}

// Configure loads the file when a path is set and returns the effective
// messages and event patterns with defaults applied.
func (a *AppConfig) Configure() (*domainConfig.Messages, *domainConfig.EventPatterns, error) {
	if a.path != "" {
		if err := a.Load(a.path); err != nil {
			return nil, nil, err
		}
	}

	messages := domainConfig.DefaultMessages().Merge(&domainConfig.Messages{
		RetrievalUnavailable: a.Messages.RetrievalUnavailable,
		EmptyAnswer:          a.Messages.EmptyAnswer,
	})

	patterns := domainConfig.DefaultEventPatterns().Merge(&domainConfig.EventPatterns{
		Recurring:       a.Events.RecurringPhrases,
		RangeConnectors: a.Events.RangeConnectors,
	})

	return messages, patterns, nil
}
