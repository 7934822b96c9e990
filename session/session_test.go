package session

import (
	"testing"

	"persona-agent/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentlyVisitedWindow(t *testing.T) {
	s := New("s1")
	for _, id := range []string{"a", "b", "c", "d"} {
		s.Visit(id)
	}
	assert.Equal(t, "d", s.CurrentUnit)
	assert.False(t, s.RecentlyVisited("a", 3))
	assert.True(t, s.RecentlyVisited("b", 3))
	assert.True(t, s.RecentlyVisited("a", 10))
	assert.False(t, New("empty").RecentlyVisited("a", 3))
}

func TestRecentAssistantReplies(t *testing.T) {
	s := New("s1")
	for _, text := range []string{"r1", "r2", "r3", "r4"} {
		s.AppendMessage(RoleUser, "q", "", false)
		s.AppendMessage(RoleAssistant, text, "u", false)
	}
	assert.Equal(t, []string{"r2", "r3", "r4"}, s.RecentAssistantReplies(3))
	assert.Empty(t, New("x").RecentAssistantReplies(3))
}

func TestRecentHistory(t *testing.T) {
	s := New("s1")
	for _, text := range []string{"a", "b", "c"} {
		s.AppendMessage(RoleUser, text, "", false)
	}
	got := s.RecentHistory(2)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Content)
	assert.Len(t, s.RecentHistory(10), 3)
	assert.Nil(t, s.RecentHistory(0))
}

func TestCloneIsDeep(t *testing.T) {
	s := New("s1")
	s.Visit("a")
	s.SetFlag("met", "true")
	s.AddTopic("life")
	s.AppendMessage(RoleUser, "hi", "", false)

	c := s.Clone()
	c.Visit("b")
	c.SetFlag("other", "true")
	c.AddTopic("sea")
	c.AppendMessage(RoleAssistant, "hello", "a", false)

	assert.Equal(t, []string{"a"}, s.Visited)
	assert.False(t, s.HasFlag("other"))
	assert.Equal(t, []string{"life"}, s.TopicIDs())
	assert.Len(t, s.History, 1)
}

func TestAddTopicReportsNew(t *testing.T) {
	s := New("s1")
	assert.True(t, s.AddTopic("sea"))
	assert.False(t, s.AddTopic("sea"))
	assert.True(t, s.AddTopic("life"))
	assert.Equal(t, []string{"life", "sea"}, s.TopicIDs())
}

func TestFlags(t *testing.T) {
	s := &Session{ID: "bare"}
	assert.False(t, s.HasFlag(content.FlagLastSentiment))
	s.SetFlag(content.FlagLastSentiment, content.SentimentNegative)
	assert.Equal(t, content.SentimentNegative, s.Flags[content.FlagLastSentiment])
}

func TestAppendMessageAssignsIDAndTime(t *testing.T) {
	s := New("s1")
	m := s.AppendMessage(RoleAssistant, "hello", "greeting", true)
	assert.NotEmpty(t, m.ID)
	assert.False(t, m.Timestamp.IsZero())
	assert.Equal(t, m.Timestamp, s.LastActive)
	assert.True(t, m.UsedRemote)
}
