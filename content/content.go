// Package content loads the static persona content: conversation units,
// topics and the default replies used when nothing else matches.
package content

// DefaultUnitID is reserved for the synthesized fallback unit.
const DefaultUnitID = "default"

// Flag names a context flag. The set of valid flags is closed: it is
// discovered from the loaded content plus the built-in flags below.
type Flag string

// FlagLastSentiment carries the sentiment of the user's previous message.
const FlagLastSentiment Flag = "last_sentiment"

var builtinFlags = []Flag{FlagLastSentiment}

// Sentiment values accepted on units and stored under FlagLastSentiment.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Unit is an immutable conversational node.
type Unit struct {
	ID           string
	Replies      []string
	Triggers     []string
	Keywords     []string
	ContextFlags []Flag
	Next         []string
	Priority     float64
	Sentiment    string
}

// IsDefault reports whether u is the fallback unit.
func (u *Unit) IsDefault() bool {
	return u.ID == DefaultUnitID
}

// Follows reports whether id is listed as a successor of u.
func (u *Unit) Follows(id string) bool {
	for _, next := range u.Next {
		if next == id {
			return true
		}
	}
	return false
}

// Topic groups units under a subject the persona can talk about.
type Topic struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
	UnitIDs     []string `json:"units"`
}

// Persona describes who is speaking; Instruction seeds remote generation.
type Persona struct {
	Name        string
	Instruction string
}

// document mirrors the on-disk format.
type document struct {
	Persona        personaSpec `yaml:"persona" json:"persona"`
	Units          []unitSpec  `yaml:"units" json:"units" validate:"required,min=1,dive"`
	Topics         []topicSpec `yaml:"topics" json:"topics" validate:"dive"`
	DefaultReplies []string    `yaml:"default_replies" json:"default_replies" validate:"required,min=1,dive,notblank"`
}

type personaSpec struct {
	Name        string `yaml:"name" json:"name"`
	Instruction string `yaml:"instruction" json:"instruction"`
}

type unitSpec struct {
	ID           string   `yaml:"id" json:"id" validate:"notblank,ne=default"`
	Replies      []string `yaml:"replies" json:"replies" validate:"required,min=1,dive,notblank"`
	Triggers     []string `yaml:"triggers" json:"triggers" validate:"dive,notblank"`
	Keywords     []string `yaml:"keywords" json:"keywords" validate:"dive,notblank"`
	ContextFlags []string `yaml:"context_flags" json:"context_flags" validate:"dive,notblank"`
	Next         []string `yaml:"next" json:"next" validate:"dive,notblank"`
	Priority     *float64 `yaml:"priority" json:"priority" validate:"omitempty,gte=0"`
	Sentiment    string   `yaml:"sentiment" json:"sentiment" validate:"omitempty,oneof=positive negative neutral"`
}

type topicSpec struct {
	ID          string   `yaml:"id" json:"id" validate:"notblank"`
	Name        string   `yaml:"name" json:"name" validate:"notblank"`
	Description string   `yaml:"description" json:"description"`
	Keywords    []string `yaml:"keywords" json:"keywords"`
	Units       []string `yaml:"units" json:"units" validate:"dive,notblank"`
}
