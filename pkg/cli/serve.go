package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/mut-digital/mutbot/pkg/cli/config"
	httpctrl "github.com/mut-digital/mutbot/pkg/controller/http"
	"github.com/mut-digital/mutbot/pkg/usecase"
	"github.com/mut-digital/mutbot/pkg/utils/async"
	"github.com/mut-digital/mutbot/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var knowledgeCfg config.Knowledge
	var eventsCfg config.Events
	var whatsappCfg config.WhatsApp

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MUTBOT_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, knowledgeCfg.Flags()...)
	flags = append(flags, eventsCfg.Flags()...)
	flags = append(flags, whatsappCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the webhook server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			messages, patterns, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load app configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llm, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM client")
			}

			vectors, err := knowledgeCfg.Configure(ctx, llm)
			if err != nil {
				return goerr.Wrap(err, "failed to configure knowledge base")
			}

			eventsCache, err := eventsCfg.Configure(patterns)
			if err != nil {
				return goerr.Wrap(err, "failed to configure events cache")
			}

			messenger, err := whatsappCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure WhatsApp client")
			}

			uc := usecase.New(repo, llm, messenger, vectors, eventsCache,
				usecase.WithMessages(messages),
				usecase.WithTimezone(eventsCfg.Timezone()),
			)

			// Pre-build the caches in the background so the first user does
			// not pay the cold-build latency. Until this finishes, vector
			// queries fall back to the retrieval-unavailable reply.
			async.Dispatch(ctx, func(ctx context.Context) error {
				return uc.Warmup(ctx)
			})

			handler := httpctrl.New(uc,
				httpctrl.WithVerifyToken(whatsappCfg.VerifyToken()),
				httpctrl.WithAppSecret(whatsappCfg.AppSecret()),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
