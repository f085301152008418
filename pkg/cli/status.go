package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/mut-digital/mutbot/pkg/utils/safe"
)

// cmdStatus queries a running instance's health endpoint and reports cache
// warmth in a human-readable form.
func cmdStatus() *cli.Command {
	var baseURL string

	return &cli.Command{
		Name:  "status",
		Usage: "Show cache warmth of a running instance",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "url",
				Usage:       "Base URL of the running instance",
				Value:       "http://localhost:8080",
				Sources:     cli.EnvVars("MUTBOT_URL"),
				Destination: &baseURL,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
			if err != nil {
				return goerr.Wrap(err, "failed to build health request")
			}

			client := &http.Client{Timeout: 10 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				return goerr.Wrap(err, "failed to reach instance", goerr.V("url", baseURL))
			}
			defer safe.Close(ctx, resp.Body)

			if resp.StatusCode != http.StatusOK {
				return goerr.New("unexpected health status", goerr.V("status", resp.StatusCode))
			}

			var health struct {
				VectorStoreWarm bool    `json:"vector_store_warm"`
				EventsWarm      bool    `json:"events_warm"`
				EventsAgeSec    float64 `json:"events_age_sec"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
				return goerr.Wrap(err, "failed to decode health response")
			}

			printWarmth("vector store", health.VectorStoreWarm)
			printWarmth("events cache", health.EventsWarm)
			if health.EventsWarm {
				fmt.Printf("  events fetched %s ago\n", (time.Duration(health.EventsAgeSec) * time.Second).Round(time.Second))
			}
			return nil
		},
	}
}

func printWarmth(name string, warm bool) {
	if warm {
		color.Green("✓ %s warm", name)
	} else {
		color.Yellow("○ %s cold", name)
	}
}
