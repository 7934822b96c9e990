package agent

import (
	"persona-agent/content"
	"persona-agent/index"
)

// polarity is a small AFINN-style lexicon scored from -5 to 5.
var polarity = map[string]int{
	"amazing": 4, "awesome": 4, "beautiful": 3, "best": 3, "brave": 2,
	"calm": 2, "cheerful": 2, "comfort": 2, "delight": 3, "delighted": 3,
	"enjoy": 2, "enjoyed": 2, "excellent": 3, "fantastic": 4, "fine": 2,
	"fond": 2, "glad": 3, "good": 3, "grand": 3, "great": 3,
	"happy": 3, "hope": 2, "interesting": 2, "kind": 2, "kindly": 2,
	"like": 2, "love": 3, "lovely": 3, "marvelous": 3, "nice": 3,
	"peaceful": 2, "pleasant": 3, "pleased": 3, "proud": 2, "safe": 1,
	"thank": 2, "thanks": 2, "wonderful": 4, "yes": 1,

	"afraid": -2, "alone": -2, "angry": -3, "awful": -3, "bad": -3,
	"bored": -2, "boring": -3, "cold": -1, "cruel": -3, "dead": -3,
	"death": -2, "dreadful": -3, "fear": -2, "grief": -2, "hate": -3,
	"horrible": -3, "hurt": -2, "lonely": -2, "lost": -3, "miserable": -3,
	"no": -1, "pain": -2, "poor": -2, "sad": -2, "scared": -2,
	"sick": -2, "sorry": -1, "storm": -1, "stupid": -2, "terrible": -3,
	"tired": -2, "ugly": -3, "unhappy": -2, "upset": -2, "worried": -3,
	"worse": -3, "worst": -3, "wrong": -2,
}

var negators = map[string]bool{
	"not": true, "never": true, "don't": true, "doesn't": true, "didn't": true,
	"isn't": true, "wasn't": true, "can't": true, "cannot": true, "won't": true,
}

// SentimentClassifier labels text by its comparative polarity: the summed
// lexicon score divided by the token count, compared to ±threshold.
type SentimentClassifier struct {
	threshold float64
}

func NewSentimentClassifier(threshold float64) SentimentClassifier {
	return SentimentClassifier{threshold: threshold}
}

// Comparative returns the per-token polarity of text. A negator flips the
// sign of the following scored word.
func (c SentimentClassifier) Comparative(text string) float64 {
	tokens := index.Tokenize(text)
	if len(tokens) == 0 {
		return 0
	}
	total := 0
	for i, token := range tokens {
		score, ok := polarity[token]
		if !ok {
			continue
		}
		if i > 0 && negators[tokens[i-1]] {
			score = -score
		}
		total += score
	}
	return float64(total) / float64(len(tokens))
}

// Classify returns one of the content.Sentiment* values.
func (c SentimentClassifier) Classify(text string) string {
	score := c.Comparative(text)
	switch {
	case score >= c.threshold:
		return content.SentimentPositive
	case score <= -c.threshold:
		return content.SentimentNegative
	default:
		return content.SentimentNeutral
	}
}
