// Package agent turns user messages into persona replies: it scores the
// content units, decides between the local winner and remote generation,
// and records the outcome in the session.
package agent

import (
	"context"
	"time"

	"persona-agent/config"
	"persona-agent/content"
	apperrors "persona-agent/errors"
	"persona-agent/index"
	"persona-agent/session"

	"go.uber.org/zap"
)

// recentReplyWindow is how many of the latest assistant replies the
// selector avoids repeating.
const recentReplyWindow = 3

// RemoteGenerator produces a reply from a remote model. Errors should wrap
// errors.ErrInvalidCredential, ErrRateLimited or ErrUnavailable.
type RemoteGenerator interface {
	Generate(ctx context.Context, userText string, history []session.Message) (string, error)
}

// TurnResult is the outcome of one processed message.
type TurnResult struct {
	Reply         string  `json:"reply"`
	UsedRemote    bool    `json:"used_remote"`
	MatchedUnitID string  `json:"matched_unit_id,omitempty"`
	Score         float64 `json:"score"`
}

type Agent struct {
	cfg       *config.Config
	catalog   *content.Catalog
	store     session.Store
	generator RemoteGenerator
	logger    *zap.Logger

	scorer   *CandidateScorer
	gate     *FallbackGate
	selector *ResponseSelector
	updater  *ContextUpdater
	filters  []ReplyFilter

	locks *sessionLocks
}

// Option customises an Agent.
type Option func(*Agent)

// WithResponseSelector replaces the reply selector, typically to fix the
// random source in tests.
func WithResponseSelector(sel *ResponseSelector) Option {
	return func(a *Agent) { a.selector = sel }
}

// WithReplyFilters replaces the default reply filter chain.
func WithReplyFilters(filters ...ReplyFilter) Option {
	return func(a *Agent) { a.filters = filters }
}

// NewAgent wires the turn pipeline. generator may be nil, in which case the
// remote path is never taken.
func NewAgent(cfg *config.Config, catalog *content.Catalog, idx *index.Index, store session.Store, generator RemoteGenerator, logger *zap.Logger, opts ...Option) *Agent {
	remoteReady := generator != nil && cfg.RemoteConfigured()
	if !remoteReady {
		generator = nil
	}

	a := &Agent{
		cfg:       cfg,
		catalog:   catalog,
		store:     store,
		generator: generator,
		logger:    logger,
		scorer:    NewCandidateScorer(catalog, idx, WeightsFromConfig(cfg), logger),
		gate:      NewFallbackGate(cfg.ConfidenceThreshold, remoteReady, logger),
		selector:  NewResponseSelector(nil),
		updater:   NewContextUpdater(catalog, NewSentimentClassifier(cfg.SentimentThreshold), logger),
		filters:   []ReplyFilter{NewPersonaFilter()},
		locks:     newSessionLocks(),
	}
	for _, opt := range opts {
		opt(a)
	}

	logger.Info("Agent initialized",
		zap.Int("units", len(catalog.Units())),
		zap.Int("topics", len(catalog.Topics())),
		zap.Float64("threshold", cfg.ConfidenceThreshold),
		zap.Bool("remote_enabled", remoteReady))
	return a
}

func (a *Agent) lock(sessionID string) func() {
	return a.locks.lock(sessionID)
}

// RemoteEnabled reports whether low-confidence turns can still go remote.
func (a *Agent) RemoteEnabled() bool {
	return a.gate.Enabled()
}

// ProcessTurn answers text within the given session. It fails only when
// the session does not exist or cannot be loaded; remote failures fall
// back to the local winner.
func (a *Agent) ProcessTurn(ctx context.Context, sessionID, text string) (TurnResult, error) {
	unlock := a.lock(sessionID)
	defer unlock()

	sess, err := a.store.Get(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	candidate := a.scorer.Best(text, sess)
	winningScore.Observe(candidate.Score)

	result := TurnResult{Score: candidate.Score}
	path := pathLocal
	if a.gate.UseRemote(candidate.Score) {
		reply, err := a.generateRemote(ctx, sess, text, candidate)
		if err == nil {
			result.Reply = reply
			result.UsedRemote = true
			path = pathRemote
		} else {
			path = pathRemoteFailed
		}
	}

	var unit *content.Unit
	if !result.UsedRemote {
		unit = candidate.Unit
		result.MatchedUnitID = unit.ID
		result.Reply = a.selector.Select(unit.Replies, sess.RecentAssistantReplies(recentReplyWindow))
	}
	result.Reply = a.filter(result.Reply)

	a.updater.Apply(sess, text, result.Reply, unit)
	turnsTotal.WithLabelValues(path).Inc()

	if err := a.store.Save(ctx, sess); err != nil {
		a.logger.Error("Failed to save session after turn",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
	return result, nil
}

func (a *Agent) generateRemote(ctx context.Context, sess *session.Session, text string, candidate Candidate) (string, error) {
	start := time.Now()
	reply, err := a.generator.Generate(ctx, text, sess.RecentHistory(a.cfg.RemoteHistoryTurns))
	remoteLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		kind := apperrors.RemoteKind(err)
		remoteFailuresTotal.WithLabelValues(kind).Inc()
		a.gate.ReportFailure(err)
		a.logger.Warn("Remote generation failed, using local reply",
			zap.String("session_id", sess.ID),
			zap.String("unit_id", candidate.Unit.ID),
			zap.Float64("score", candidate.Score),
			zap.String("kind", kind),
			zap.Error(err))
		return "", err
	}
	a.logger.Debug("Remote reply used",
		zap.String("session_id", sess.ID),
		zap.Float64("score", candidate.Score),
		zap.Float64("threshold", a.cfg.ConfidenceThreshold))
	return reply, nil
}

func (a *Agent) filter(reply string) string {
	for _, f := range a.filters {
		reply = f.Filter(reply)
	}
	return reply
}

// CreateSession starts an empty session, replacing any existing one with
// the same id.
func (a *Agent) CreateSession(ctx context.Context, sessionID string) error {
	unlock := a.lock(sessionID)
	defer unlock()

	if _, err := a.store.Create(ctx, sessionID); err != nil {
		return apperrors.WrapErrorf(err, "create session %s", sessionID)
	}
	a.logger.Info("Session created", zap.String("session_id", sessionID))
	return nil
}

// ResetSession discards all state for sessionID and starts it afresh.
func (a *Agent) ResetSession(ctx context.Context, sessionID string) error {
	unlock := a.lock(sessionID)
	defer unlock()

	if _, err := a.store.Create(ctx, sessionID); err != nil {
		return apperrors.WrapErrorf(err, "reset session %s", sessionID)
	}
	a.logger.Info("Session reset", zap.String("session_id", sessionID))
	return nil
}

// EnsureSession creates sessionID if it does not exist and reports whether
// it did so.
func (a *Agent) EnsureSession(ctx context.Context, sessionID string) (bool, error) {
	unlock := a.lock(sessionID)
	defer unlock()

	_, err := a.store.Get(ctx, sessionID)
	if err == nil {
		return false, nil
	}
	if !apperrors.IsSessionNotFound(err) {
		return false, err
	}
	if _, err := a.store.Create(ctx, sessionID); err != nil {
		return false, apperrors.WrapErrorf(err, "create session %s", sessionID)
	}
	a.logger.Info("Session created on first contact", zap.String("session_id", sessionID))
	return true, nil
}

// GetHistory returns the session's messages, oldest first.
func (a *Agent) GetHistory(ctx context.Context, sessionID string) ([]session.Message, error) {
	sess, err := a.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.History, nil
}

// GetTopicsDiscussed returns the topics touched so far, in content order.
func (a *Agent) GetTopicsDiscussed(ctx context.Context, sessionID string) ([]content.Topic, error) {
	sess, err := a.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	topics := make([]content.Topic, 0, len(sess.Topics))
	for _, topic := range a.catalog.Topics() {
		if sess.Topics[topic.ID] {
			topics = append(topics, topic)
		}
	}
	return topics, nil
}
