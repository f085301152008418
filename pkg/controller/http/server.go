package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/usecase"
	"github.com/mut-digital/mutbot/pkg/utils/errutil"
	"github.com/mut-digital/mutbot/pkg/utils/logging"
)

// ChatUseCase is the subset of the use case layer the webhook needs.
type ChatUseCase interface {
	HandleMessage(ctx context.Context, msg *model.InboundMessage) error
	Status() usecase.Status
}

type Server struct {
	router      *chi.Mux
	chatUC      ChatUseCase
	verifyToken string
	appSecret   string
}

type Options func(*Server)

// WithVerifyToken sets the token echoed back during the Meta webhook
// subscription handshake.
func WithVerifyToken(token string) Options {
	return func(s *Server) {
		s.verifyToken = token
	}
}

// WithAppSecret enables X-Hub-Signature-256 verification on incoming
// webhook deliveries. Without it, deliveries are accepted unverified.
func WithAppSecret(secret string) Options {
	return func(s *Server) {
		s.appSecret = secret
	}
}

func New(chatUC ChatUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		chatUC: chatUC,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler(s.chatUC))

	// WhatsApp webhook endpoints. No auth beyond the Meta handshake and
	// the payload signature.
	webhook := NewWhatsAppWebhookHandler(s.chatUC)
	r.Route("/hooks/whatsapp", func(r chi.Router) {
		r.Get("/", verifyHandler(s.verifyToken))
		r.Group(func(r chi.Router) {
			if s.appSecret != "" {
				r.Use(WhatsAppSignatureMiddleware(s.appSecret))
			}
			r.Post("/", webhook.ServeHTTP)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// healthHandler reports warmup state for readiness probes.
func healthHandler(chatUC ChatUseCase) http.HandlerFunc {
	type response struct {
		VectorStoreWarm bool    `json:"vector_store_warm"`
		EventsWarm      bool    `json:"events_warm"`
		EventsAgeSec    float64 `json:"events_age_sec"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		status := chatUC.Status()
		resp := response{
			VectorStoreWarm: status.VectorStore.Active,
			EventsWarm:      status.EventsWarm,
			EventsAgeSec:    status.EventsAge.Seconds(),
		}

		data, err := json.Marshal(resp)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal health response"), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data) //nolint:errcheck // header already committed
	}
}
