package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/mut-digital/mutbot/pkg/cli/config"
)

// cmdWarmup builds the embedding cache and fetches the events feed once,
// then exits. Run it before deploying so the serving instance starts warm
// from the cache file instead of re-embedding the whole catalog.
func cmdWarmup() *cli.Command {
	var appCfg config.AppConfig
	var geminiCfg config.Gemini
	var knowledgeCfg config.Knowledge
	var eventsCfg config.Events

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, knowledgeCfg.Flags()...)
	flags = append(flags, eventsCfg.Flags()...)

	return &cli.Command{
		Name:  "warmup",
		Usage: "Build the embedding cache and prefetch the events feed",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			_, patterns, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load app configuration")
			}

			llm, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM client")
			}

			vectors, err := knowledgeCfg.Configure(ctx, llm)
			if err != nil {
				return goerr.Wrap(err, "failed to configure knowledge base")
			}

			startedAt := time.Now()
			cache, err := vectors.Init(ctx)
			if err != nil {
				color.Red("✗ vector store build failed: %v", err)
				return goerr.Wrap(err, "failed to build vector store")
			}
			color.Green("✓ vector store ready (%d documentos, %s)", len(cache.Documents), time.Since(startedAt).Round(time.Millisecond))

			eventsCache, err := eventsCfg.Configure(patterns)
			if err != nil {
				return goerr.Wrap(err, "failed to configure events cache")
			}

			records := eventsCache.Refresh(ctx)
			color.Green("✓ events feed fetched (%d eventos vigentes)", len(records))

			if path := knowledgeCfg.CachePath(); path != "" {
				fmt.Printf("embedding cache written to %s\n", path)
			}
			return nil
		},
	}
}
