package agent

import (
	"persona-agent/content"
	"persona-agent/session"

	"go.uber.org/zap"
)

// flagSet is the value stored for context flags set by visiting a unit.
const flagSet = "true"

// ContextUpdater applies the outcome of a turn to the session.
type ContextUpdater struct {
	catalog   *content.Catalog
	sentiment SentimentClassifier
	logger    *zap.Logger
}

func NewContextUpdater(catalog *content.Catalog, sentiment SentimentClassifier, logger *zap.Logger) *ContextUpdater {
	return &ContextUpdater{
		catalog:   catalog,
		sentiment: sentiment,
		logger:    logger,
	}
}

// Apply records the exchange. unit is the local winner that produced reply,
// or nil when the reply came from the remote generator; only a local unit
// is visited and contributes flags and topics.
func (u *ContextUpdater) Apply(sess *session.Session, userText, reply string, unit *content.Unit) {
	sess.AppendMessage(session.RoleUser, userText, "", false)

	if unit == nil {
		sess.AppendMessage(session.RoleAssistant, reply, "", true)
	} else {
		sess.AppendMessage(session.RoleAssistant, reply, unit.ID, false)
		sess.Visit(unit.ID)
		for _, flag := range unit.ContextFlags {
			u.setFlag(sess, flag, flagSet)
		}
		for _, topic := range u.catalog.TopicsForUnit(unit.ID) {
			if sess.AddTopic(topic.ID) {
				u.logger.Debug("Topic discussed",
					zap.String("session_id", sess.ID),
					zap.String("topic_id", topic.ID))
			}
		}
	}

	u.setFlag(sess, content.FlagLastSentiment, u.sentiment.Classify(userText))
}

// setFlag writes only flags from the catalog's closed set.
func (u *ContextUpdater) setFlag(sess *session.Session, flag content.Flag, value string) {
	if !u.catalog.HasFlag(flag) {
		u.logger.Warn("Ignoring undeclared context flag",
			zap.String("session_id", sess.ID),
			zap.String("flag", string(flag)))
		return
	}
	sess.SetFlag(flag, value)
}
