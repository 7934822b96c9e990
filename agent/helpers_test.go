package agent

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"

	"persona-agent/config"
	"persona-agent/content"
	"persona-agent/index"
	"persona-agent/session"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testContent = `
persona:
  name: Elsie
  instruction: Speak as Elsie.
units:
  - id: greeting
    triggers: ["hello"]
    keywords: ["howdy"]
    next: [biography]
    replies: ["Hello there.", "Good day.", "Welcome in.", "Well met."]
  - id: biography
    triggers: ["tell me about your life"]
    keywords: ["born", "childhood"]
    context_flags: [knows_elsie]
    replies: ["I was born in Bath."]
  - id: weather
    triggers: ["weather"]
    keywords: ["fog", "storm"]
    context_flags: [lighthouse_talk]
    replies: ["Fog again.", "A fair wind today."]
  - id: cheer
    keywords: ["wonderful"]
    sentiment: positive
    replies: ["How lovely to hear."]
  - id: bell_first
    triggers: ["bell"]
    replies: ["The first bell."]
  - id: bell_second
    triggers: ["bell"]
    replies: ["The second bell."]
topics:
  - id: life
    name: Life
    units: [biography]
  - id: sea
    name: The sea
    units: [weather]
default_replies: ["I am not sure I follow you."]
`

func testConfig() *config.Config {
	return &config.Config{
		ConfidenceThreshold: 5,
		RemoteHistoryTurns:  8,
		TriggerBonus:        20,
		PartialTriggerBonus: 10,
		KeywordBonus:        7,
		ContextBonus:        5,
		SimilarityWeight:    15,
		FlowBonus:           6,
		RecencyPenalty:      0.7,
		DefaultDamping:      0.1,
		RecencyWindow:       3,
		FuzzyThreshold:      0.7,
		SentimentThreshold:  0.2,
	}
}

func remoteConfig() *config.Config {
	cfg := testConfig()
	cfg.RemoteFallbackEnabled = true
	cfg.RemoteAPIKey = "sk-test"
	return cfg
}

func testCatalog(t *testing.T) *content.Catalog {
	t.Helper()
	catalog, err := content.Parse([]byte(testContent), content.FormatYAML)
	require.NoError(t, err)
	return catalog
}

func testIndex(t *testing.T, catalog *content.Catalog) *index.Index {
	t.Helper()
	idx, err := index.New(catalog.IndexTexts(), 0, zap.NewNop())
	require.NoError(t, err)
	return idx
}

func newTestScorer(t *testing.T) *CandidateScorer {
	t.Helper()
	catalog := testCatalog(t)
	return NewCandidateScorer(catalog, testIndex(t, catalog), WeightsFromConfig(testConfig()), zap.NewNop())
}

// newTestAgent builds an agent over the test content with a seeded
// selector and an in-memory store holding session "s1".
func newTestAgent(t *testing.T, cfg *config.Config, gen RemoteGenerator) (*Agent, *session.MemoryStore) {
	t.Helper()
	catalog := testCatalog(t)
	store := session.NewMemoryStore()
	a := NewAgent(cfg, catalog, testIndex(t, catalog), store, gen, zap.NewNop(),
		WithResponseSelector(NewResponseSelector(rand.NewPCG(1, 2))))
	require.NoError(t, a.CreateSession(context.Background(), "s1"))
	return a, store
}

type fakeGenerator struct {
	mu          sync.Mutex
	calls       int
	reply       string
	err         error
	lastHistory []session.Message
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, history []session.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastHistory = history
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func unitIndex(t *testing.T, catalog *content.Catalog, id string) int {
	t.Helper()
	for i, u := range catalog.Units() {
		if u.ID == id {
			return i
		}
	}
	t.Fatalf("unit %q not found", id)
	return -1
}

func tokenizeForTest(s string) []string {
	return index.Tokenize(s)
}
