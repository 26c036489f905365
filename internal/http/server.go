package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/middleware/ratelimit"
	"finanzas/internal/middleware/security"
	"finanzas/internal/middleware/trace"
	"finanzas/internal/services"
)

const (
	channelWhatsApp = "whatsapp"
	channelAPI      = "api"

	// interpretTimeout bounds ledger work for one message. Twilio gives up
	// on a webhook after 15s.
	interpretTimeout = 12 * time.Second
	readyTimeout     = 3 * time.Second
)

// MessageInterpreter turns one inbound message into a reply.
type MessageInterpreter interface {
	Interpret(ctx context.Context, text, sender string, now time.Time) services.Response
}

var _ MessageInterpreter = (*services.Interpreter)(nil)

// ReadinessCheck reports whether the ledger backend can serve requests.
type ReadinessCheck func(ctx context.Context) error

// Options configures NewServer. Interpreter is required.
type Options struct {
	Interpreter        MessageInterpreter
	Ready              ReadinessCheck
	Logger             *applog.Logger
	RateLimitPerMinute int
	// Now is sampled once per message; defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server
	interpreter MessageInterpreter
	ready       ReadinessCheck
	now         func() time.Time
	logger      *applog.Logger
	msgLogger   *applog.StructuredLogger
	limiter     *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		cfg := applog.DefaultConfig()
		cfg.Component = applog.ComponentHTTP
		logger = applog.New(cfg)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	limiterCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limiterCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		interpreter: opts.Interpreter,
		ready:       opts.Ready,
		now:         now,
		logger:      logger,
		msgLogger:   applog.NewStructuredLogger(logger.WithComponent(applog.ComponentWebhook)),
		limiter:     ratelimit.NewLimiter(limiterCfg),
		detector:    security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, applog.NewStructuredLogger(logger))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	webhookLimit := s.limiter.Middleware(s.senderKey, s.webhookLimited)
	mux.Handle("POST /whatsapp", limitBody(webhookLimit(http.HandlerFunc(s.handleWhatsApp))))

	apiLimit := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError("rate limit exceeded").Write(w)
	})
	mux.Handle("POST /api/messages", limitBody(apiLimit(http.HandlerFunc(s.handleAPIMessage))))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = applog.RequestIDMiddleware(trace.RequestID)(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(logger)(handler)
	handler = s.detector.Middleware(handler)
	handler = headers.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// senderKey limits webhook traffic per sender so one chatty number cannot
// starve the rest; requests without a sender fall back to the client IP.
func (s *Server) senderKey(r *http.Request) string {
	if from := sanitizeInput(r.PostFormValue(twilioFromField)); from != "" {
		return "from:" + from
	}
	return "ip:" + s.detector.ExtractClientIP(r)
}

// webhookLimited answers over-limit webhook calls with a 200 and an empty
// TwiML document. Twilio treats non-2xx answers as delivery failures.
func (s *Server) webhookLimited(w http.ResponseWriter, r *http.Request) {
	NewResponse().BodyTwiML().Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().BodyString("ok").Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			ServiceUnavailableError("not ready").Write(w)
			return
		}
	}
	NewResponse().BodyString("ready").Write(w)
}

func (s *Server) handleWhatsApp(w http.ResponseWriter, r *http.Request) {
	msg, err := ParseWebhookForm(r)
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Parse webhook form failed", applog.FieldError, err)
		NewResponse().Status(http.StatusBadRequest).BodyTwiML().Write(w)
		return
	}

	resp := s.interpret(r.Context(), channelWhatsApp, msg)
	NewResponse().BodyTwiML(resp.Reply).Write(w)
}

// apiResponse is the JSON body of POST /api/messages.
type apiResponse struct {
	Reply string `json:"reply"`
	Kind  string `json:"kind"`
	Ref   string `json:"ref,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleAPIMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := ParseAPIMessage(r)
	if errors.Is(err, errMissingText) {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	if err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	resp := s.interpret(r.Context(), channelAPI, msg)
	body := apiResponse{
		Reply: resp.Reply,
		Kind:  resp.Result.Kind.String(),
		Ref:   resp.RowRef,
	}
	if resp.Err != nil {
		body.Error = resp.Err.Error()
	}
	NewResponse().Status(apiStatus(resp)).BodyJSON(body).Write(w)
}

// apiStatus maps the interpretation outcome to an HTTP status. Rejected
// input is the caller's fault; any other error came from the ledger.
func apiStatus(resp services.Response) int {
	switch {
	case resp.Err == nil:
		return http.StatusOK
	case resp.Result.Kind == core.KindRejected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusServiceUnavailable
	}
}

func (s *Server) interpret(ctx context.Context, channel string, msg InboundMessage) services.Response {
	ctx, cancel := context.WithTimeout(ctx, interpretTimeout)
	defer cancel()

	resp := s.interpreter.Interpret(ctx, msg.Text, msg.Sender, s.now())

	// Rejections are reported to the user, not logged as failures.
	logErr := resp.Err
	if resp.Result.Kind == core.KindRejected {
		logErr = nil
		slog.DebugContext(ctx, "Message rejected", applog.FieldError, resp.Err)
	}
	s.msgLogger.LogMessage(ctx, channel, msg.Sender, resp.Result.Kind.String(), logErr)
	return resp
}

// Metrics aggregates middleware counters for diagnostics.
type Metrics struct {
	Trace     trace.Metrics
	RateLimit ratelimit.Metrics
	Security  security.DetectionMetrics
}

func (s *Server) GetMetrics() Metrics {
	return Metrics{
		Trace:     s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
	}
}
