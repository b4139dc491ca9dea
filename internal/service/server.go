package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/cifra/internal/cipher"
	"github.com/RowanDark/cifra/internal/cryptanalysis"
	"github.com/RowanDark/cifra/internal/dictionary"
	"github.com/RowanDark/cifra/internal/history"
	"github.com/RowanDark/cifra/internal/logging"
	"github.com/RowanDark/cifra/internal/observability/metrics"
)

// Server implements CipherServer.
type Server struct {
	registry *cipher.Registry
	words    *dictionary.Holder
	keyspace cryptanalysis.Keyspace
	workers  int
	history  *history.Store
	audit    *logging.AuditLogger
	logger   *slog.Logger
}

var _ CipherServer = (*Server)(nil)

type Option func(*Server)

// WithRegistry replaces the default operation registry.
func WithRegistry(reg *cipher.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithKeyspace bounds Crack. The default is the 1..23 shift range.
func WithKeyspace(ks cryptanalysis.Keyspace) Option {
	return func(s *Server) { s.keyspace = ks }
}

// WithWorkers sets the size of the Crack worker pool. Values below 2 scan
// sequentially.
func WithWorkers(n int) Option {
	return func(s *Server) { s.workers = n }
}

// WithHistory records every Crack run in store.
func WithHistory(store *history.Store) Option {
	return func(s *Server) { s.history = store }
}

// WithAuditLogger sends transform and crack_run audit events to l.
func WithAuditLogger(l *logging.AuditLogger) Option {
	return func(s *Server) { s.audit = l }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer builds a Server scoring against the word set held by words. A
// nil holder makes Crack fail with FailedPrecondition.
func NewServer(words *dictionary.Holder, opts ...Option) *Server {
	s := &Server{
		registry: cipher.DefaultRegistry(),
		words:    words,
		keyspace: cryptanalysis.DefaultKeyspace,
		workers:  1,
		audit:    logging.Discard(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Transform(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeTransformRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	op, ok := s.registry.Get(req.Operation)
	if !ok {
		metrics.RecordOperation("unknown", "error")
		return nil, status.Errorf(codes.InvalidArgument, "%v: %q", cipher.ErrUnknownOperation, req.Operation)
	}

	out, err := op.Execute(ctx, req.Text, req.Params)
	if err != nil {
		metrics.RecordOperation(op.Name(), "error")
		if errors.Is(err, cipher.ErrInvalidKey) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	metrics.RecordOperation(op.Name(), "ok")

	meta := map[string]any{"operation": op.Name(), "text_length": len(req.Text)}
	for name, value := range req.Params {
		meta[name] = value
	}
	s.emit(logging.AuditEvent{EventType: logging.EventTransform, Metadata: meta})

	return TransformResponse{Text: out}.encode()
}

func (s *Server) Crack(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.words == nil {
		return nil, status.Error(codes.FailedPrecondition, "no dictionary loaded")
	}
	req := decodeCrackRequest(in)
	words := s.words.Load()
	runID := history.NewRunID()
	mode := "sequential"
	if s.workers > 1 {
		mode = "parallel"
	}

	start := time.Now()
	best, err := cryptanalysis.RecoverParallel(ctx, req.Text, words, s.keyspace, s.workers)
	elapsed := time.Since(start)

	resp := CrackResponse{RunID: runID, DictionaryWords: words.Len()}
	outcome := "ok"
	switch {
	case errors.Is(err, cryptanalysis.ErrEmptyDictionary):
		outcome = "empty_dictionary"
		resp.Warning = err.Error()
	case err != nil:
		metrics.RecordCrackRun(mode, "error", elapsed)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, status.FromContextError(ctxErr).Err()
		}
		if errors.Is(err, cryptanalysis.ErrInvalidKeyspace) {
			return nil, status.Error(codes.FailedPrecondition, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	metrics.RecordCrackRun(mode, outcome, elapsed)
	resp.Shift = best.Shift
	resp.Score = best.Score
	resp.Plaintext = best.Plaintext

	source := req.Source
	if source == "" {
		source = "rpc"
	}
	if s.history != nil {
		_, herr := s.history.Record(ctx, history.Run{
			ID:         runID,
			Source:     source,
			Shift:      best.Shift,
			Score:      best.Score,
			TextLength: len(req.Text),
			Dictionary: words.Len(),
			Mode:       mode,
		})
		if herr != nil {
			s.logger.Warn("record crack run", "run_id", runID, "error", herr)
		}
	}

	s.emit(logging.AuditEvent{
		EventType: logging.EventCrackRun,
		RunID:     runID,
		Reason:    resp.Warning,
		Metadata: map[string]any{
			"source":      source,
			"shift":       best.Shift,
			"score":       best.Score,
			"text_length": len(req.Text),
			"mode":        mode,
			"duration_ms": elapsed.Milliseconds(),
		},
	})
	return resp.encode()
}

func (s *Server) Frequency(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	text := stringField(in, "text")
	return FrequencyResponse{Histogram: cryptanalysis.Frequency(text)}.encode()
}

func (s *Server) emit(event logging.AuditEvent) {
	if err := s.audit.Emit(event); err != nil {
		s.logger.Warn("emit audit event", "event", event.EventType, "error", err)
	}
}
