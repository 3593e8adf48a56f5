package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
	mdwerrors "github.com/msto63/euklid/foundation/core/errors"
	"github.com/msto63/euklid/foundation/core/i18n"
	mdwlog "github.com/msto63/euklid/foundation/core/log"
	"github.com/msto63/euklid/internal/euklid/store"
	"github.com/msto63/euklid/pkg/core/logging"
	"github.com/msto63/euklid/pkg/rational"
)

// Service is the euklid calculator service shared by the CLI, the REPL, the
// TUI and the network servers. It is safe for concurrent use.
type Service struct {
	engine   atomic.Pointer[rational.Engine]
	history  store.HistoryStore
	messages *i18n.Manager
	logger   *logging.Logger
}

// Config holds service configuration
type Config struct {
	Engine rational.Options
	// History is optional; a nil store disables recording.
	History store.HistoryStore
	// Messages defaults to the embedded catalogues.
	Messages *i18n.Manager
	Logger   *logging.Logger
}

// NewService creates a new euklid service
func NewService(cfg Config) (*Service, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New("euklid")
	}

	messages := cfg.Messages
	if messages == nil {
		var err error
		messages, err = i18n.New(i18n.Options{})
		if err != nil {
			return nil, mdwerror.Wrap(err, "failed to load message catalogues").
				WithCode(mdwerror.CodeInternal).
				WithOperation("service.New")
		}
	}

	s := &Service{
		history:  cfg.History,
		messages: messages,
		logger:   logger,
	}
	s.engine.Store(rational.NewEngine(cfg.Engine))
	return s, nil
}

// SetEngineOptions replaces the engine limits. Calls already running keep
// the engine they started with.
func (s *Service) SetEngineOptions(opts rational.Options) {
	e := rational.NewEngine(opts)
	s.engine.Store(e)
	s.logger.Info("Engine options updated",
		"max_decimal_places", e.Options().MaxDecimalPlaces,
		"precision", e.Options().Precision)
}

// EngineOptions returns the effective engine limits
func (s *Service) EngineOptions() rational.Options {
	return s.engine.Load().Options()
}

// Messages returns the message catalogues
func (s *Service) Messages() *i18n.Manager {
	return s.messages
}

// HistoryEnabled reports whether calculations are recorded
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}

// Close releases the history store
func (s *Service) Close() error {
	if s.history == nil {
		return nil
	}
	return s.history.Close()
}

type requestIDKey struct{}

// WithRequestID returns a context carrying id. Operations use it instead of
// generating a fresh one, so a request keeps its ID across transports.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request ID carried by ctx, if any
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// outcome is what an operation reports to track for logging and history
type outcome struct {
	result   string
	metadata map[string]interface{}
}

// track runs fn with the current engine, times and logs it, and records the
// call in history. It returns the request ID used.
func (s *Service) track(ctx context.Context, kind store.Kind, input string, fn func(*rational.Engine) (outcome, error)) (string, error) {
	requestID := RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := s.logger.WithRequestID(requestID)

	timer := logger.StartTimer(string(kind)).WithField("input", input)
	start := time.Now()
	out, err := fn(s.engine.Load())
	elapsed := time.Since(start)

	if err != nil {
		timer.StopWithError(err)
		var mdwErr *mdwerror.Error
		if errors.As(err, &mdwErr) {
			mdwErr.WithRequestID(requestID)
		}
	} else {
		timer.Stop()
	}

	if s.history != nil {
		rec := &store.Record{
			Kind:      kind,
			Input:     input,
			Result:    out.result,
			RequestID: requestID,
			Duration:  elapsed,
			Metadata:  out.metadata,
		}
		if err != nil {
			rec.ErrorKind = string(rational.KindOf(err))
		}
		if recErr := s.history.Record(context.WithoutCancel(ctx), rec); recErr != nil {
			logger.Warn("Failed to record calculation", mdwlog.Fields{"error": recErr.Error(), "kind": string(kind)})
		}
	}

	return requestID, err
}

func historyDisabled(op string) error {
	return mdwerrors.NewErrorBuilder(mdwerrors.ModuleService).
		Operation(op).
		Message("calculation history is disabled").
		Code(mdwerror.CodeServiceUnavailable).
		Build()
}

// SelfCheck runs a fixed calculation on the current engine without logging or
// recording it. Health checks use it.
func (s *Service) SelfCheck() error {
	half, err := rational.Parse("1/2")
	if err != nil {
		return err
	}
	third, err := rational.Parse("1/3")
	if err != nil {
		return err
	}
	ev, err := s.engine.Load().Evaluate([]rational.Value{half, third}, []rational.Operator{rational.Add})
	if err != nil {
		return err
	}
	if got := ev.Result.String(); got != "5/6" {
		return mdwerror.New("engine self-check returned " + got).
			WithCode(mdwerror.CodeInternal).
			WithOperation("service.SelfCheck")
	}
	return nil
}
