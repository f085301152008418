package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	domainConfig "github.com/mut-digital/mutbot/pkg/domain/model/config"
	"github.com/mut-digital/mutbot/pkg/service/events"
	"github.com/urfave/cli/v3"
)

// Events holds CLI flags for the WordPress events feed and its cache.
type Events struct {
	feedURL  string
	pageSize int64
	cacheTTL time.Duration
	timezone string
}

// Flags returns CLI flags for events configuration
func (e *Events) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "events-feed-url",
			Usage:       "WordPress REST endpoint publishing mall events",
			Sources:     cli.EnvVars("MUTBOT_EVENTS_FEED_URL"),
			Destination: &e.feedURL,
		},
		&cli.Int64Flag{
			Name:        "events-page-size",
			Usage:       "Events fetched per feed page",
			Value:       events.DefaultPageSize,
			Sources:     cli.EnvVars("MUTBOT_EVENTS_PAGE_SIZE"),
			Destination: &e.pageSize,
		},
		&cli.DurationFlag{
			Name:        "events-cache-ttl",
			Usage:       "How long the event list is served without refetching",
			Value:       events.DefaultCacheTTL,
			Sources:     cli.EnvVars("MUTBOT_EVENTS_CACHE_TTL"),
			Destination: &e.cacheTTL,
		},
		&cli.StringFlag{
			Name:        "timezone",
			Usage:       "IANA timezone of the mall",
			Value:       "America/Santiago",
			Sources:     cli.EnvVars("MUTBOT_TIMEZONE"),
			Destination: &e.timezone,
		},
	}
}

// Timezone returns the configured mall timezone
func (e *Events) Timezone() string {
	return e.timezone
}

// Configure builds the events cache over the configured feed.
func (e *Events) Configure(patterns *domainConfig.EventPatterns) (*events.Cache, error) {
	if e.feedURL == "" {
		return nil, goerr.New("events-feed-url is required")
	}

	feed := events.NewFeed(e.feedURL, events.WithPageSize(int(e.pageSize)))
	filter := events.NewFilter(patterns)

	return events.NewCache(feed, filter,
		events.WithCacheTTL(e.cacheTTL),
		events.WithTimezone(e.timezone),
	), nil
}
