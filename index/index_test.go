package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "there", "it's", "1887"}, Tokenize("Hello, there! It's 1887."))
	assert.Empty(t, Tokenize("  ?! "))
}

func TestSimilarityRanksMatchingDocumentHighest(t *testing.T) {
	idx, err := New([]string{
		"hello good day greetings",
		"lighthouse lamp lens keeper",
		"storm fog weather wind",
	}, 16, zap.NewNop())
	require.NoError(t, err)

	scores := idx.Similarity("how do you clean the lamp lens")
	require.Len(t, scores, 3)
	assert.Greater(t, scores[1], scores[0])
	assert.Greater(t, scores[1], scores[2])
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestSimilarityIdenticalDocumentIsOne(t *testing.T) {
	idx, err := New([]string{"fog bell", "lamp"}, 0, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, idx.Similarity("FOG bell")[0], 1e-9)
}

func TestEmptyCorpusScoresZero(t *testing.T) {
	idx, err := New(nil, 4, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Similarity("anything"))

	blank, err := New([]string{"", ""}, 4, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, blank.Similarity("anything at all"))
}

func TestUnknownTermsScoreZero(t *testing.T) {
	idx, err := New([]string{"lamp lens"}, 4, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, idx.Similarity("zeppelin"))
	assert.Equal(t, []float64{0}, idx.Similarity(""))
}

func TestSimilarityIsMemoised(t *testing.T) {
	idx, err := New([]string{"lamp lens", "fog"}, 4, zap.NewNop())
	require.NoError(t, err)

	first := idx.Similarity("The Lamp")
	second := idx.Similarity("the   lamp!")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, idx.cache.Len())
}
