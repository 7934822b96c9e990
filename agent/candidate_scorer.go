package agent

import (
	"strings"

	"persona-agent/config"
	"persona-agent/content"
	"persona-agent/index"
	"persona-agent/session"

	"go.uber.org/zap"
)

// minPartialTriggerWord is the shortest trigger word that earns the
// partial-trigger bonus.
const minPartialTriggerWord = 4

// Weights are the tunable scoring constants.
type Weights struct {
	Trigger        float64
	PartialTrigger float64
	Keyword        float64
	Context        float64
	Similarity     float64
	Flow           float64
	RecencyPenalty float64
	DefaultDamping float64
	RecencyWindow  int
	FuzzyThreshold float64
}

// WeightsFromConfig copies the scoring section of cfg.
func WeightsFromConfig(cfg *config.Config) Weights {
	return Weights{
		Trigger:        cfg.TriggerBonus,
		PartialTrigger: cfg.PartialTriggerBonus,
		Keyword:        cfg.KeywordBonus,
		Context:        cfg.ContextBonus,
		Similarity:     cfg.SimilarityWeight,
		Flow:           cfg.FlowBonus,
		RecencyPenalty: cfg.RecencyPenalty,
		DefaultDamping: cfg.DefaultDamping,
		RecencyWindow:  cfg.RecencyWindow,
		FuzzyThreshold: cfg.FuzzyThreshold,
	}
}

// Candidate is the scorer's pick for one message.
type Candidate struct {
	Unit  *content.Unit
	Score float64
}

// CandidateScorer ranks every unit against a message and session. It holds
// no mutable state and is safe for concurrent use.
type CandidateScorer struct {
	catalog *content.Catalog
	index   *index.Index
	weights Weights
	logger  *zap.Logger
}

func NewCandidateScorer(catalog *content.Catalog, idx *index.Index, weights Weights, logger *zap.Logger) *CandidateScorer {
	return &CandidateScorer{
		catalog: catalog,
		index:   idx,
		weights: weights,
		logger:  logger,
	}
}

// Scores returns the final score of every unit, aligned with
// catalog.Units(). A blank message scores zero everywhere.
func (s *CandidateScorer) Scores(message string, sess *session.Session) []float64 {
	units := s.catalog.Units()
	scores := make([]float64, len(units))

	lowered := strings.ToLower(strings.TrimSpace(message))
	if lowered == "" {
		return scores
	}
	tokens := index.Tokenize(lowered)
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = struct{}{}
	}

	var similarities []float64
	if s.index != nil && s.index.Len() == len(units) {
		similarities = s.index.Similarity(lowered)
	}

	var current *content.Unit
	if sess.CurrentUnit != "" {
		current, _ = s.catalog.Unit(sess.CurrentUnit)
	}

	for i, unit := range units {
		score := s.triggerScore(unit, lowered, tokenSet)
		score += s.keywordScore(unit, lowered, tokens)
		score += s.contextScore(unit, sess)
		if similarities != nil {
			score += similarities[i] * s.weights.Similarity
		}
		if current != nil && current.Follows(unit.ID) {
			score += s.weights.Flow
		}

		score *= unit.Priority
		if sess.RecentlyVisited(unit.ID, s.weights.RecencyWindow) {
			score *= s.weights.RecencyPenalty
		}
		if unit.IsDefault() && score > 0 {
			score *= s.weights.DefaultDamping
		}
		scores[i] = score
	}
	return scores
}

// Best returns the unit with the strictly highest positive score, keeping
// the earliest unit on ties. The default unit wins when nothing scores
// above zero.
func (s *CandidateScorer) Best(message string, sess *session.Session) Candidate {
	units := s.catalog.Units()
	scores := s.Scores(message, sess)

	best := -1
	for i, score := range scores {
		if score <= 0 {
			continue
		}
		if best < 0 || score > scores[best] {
			best = i
		}
	}
	if best < 0 {
		return Candidate{Unit: s.catalog.Default(), Score: 0}
	}

	s.logger.Debug("Scored candidates",
		zap.String("session_id", sess.ID),
		zap.String("unit_id", units[best].ID),
		zap.Float64("score", scores[best]))
	return Candidate{Unit: units[best], Score: scores[best]}
}

// triggerScore awards the full bonus for each trigger contained in the
// message and the partial bonus for triggers sharing a long word with it.
func (s *CandidateScorer) triggerScore(unit *content.Unit, message string, tokens map[string]struct{}) float64 {
	var score float64
	for _, trigger := range unit.Triggers {
		if strings.Contains(message, trigger) {
			score += s.weights.Trigger
			continue
		}
		for _, word := range index.Tokenize(trigger) {
			if len([]rune(word)) < minPartialTriggerWord {
				continue
			}
			if _, ok := tokens[word]; ok {
				score += s.weights.PartialTrigger
				break
			}
		}
	}
	return score
}

func (s *CandidateScorer) keywordScore(unit *content.Unit, message string, tokens []string) float64 {
	var score float64
	for _, keyword := range unit.Keywords {
		if keywordMatches(keyword, message, tokens, s.weights.FuzzyThreshold) {
			score += s.weights.Keyword
		}
	}
	return score
}

// contextScore rewards flags the unit depends on that the session already
// carries, and a sentiment tag equal to the previous message's sentiment.
func (s *CandidateScorer) contextScore(unit *content.Unit, sess *session.Session) float64 {
	var score float64
	for _, flag := range unit.ContextFlags {
		if sess.HasFlag(flag) {
			score += s.weights.Context
		}
	}
	if unit.Sentiment != "" && sess.Flags[content.FlagLastSentiment] == unit.Sentiment {
		score += s.weights.Context
	}
	return score
}
