package store

import (
	"testing"
	"time"

	"github.com/YourBr0ther/deskmate-sub001/internal/clock"
	"github.com/pixil98/go-testutil"
)

func TestApplyStream(t *testing.T) {
	tests := map[string]struct {
		chunks     []streamChunk
		expContent []string
		expTyping  bool
	}{
		"chunks coalesce into one message": {
			chunks: []streamChunk{
				{content: "Hel"},
				{content: "lo"},
				{done: true},
			},
			expContent: []string{"Hello"},
		},
		"full content replaces": {
			chunks: []streamChunk{
				{content: "Hel"},
				{fullContent: "Hello there", done: true},
			},
			expContent: []string{"Hello there"},
		},
		"unfinished stream keeps typing": {
			chunks: []streamChunk{
				{content: "thinking"},
			},
			expContent: []string{"thinking"},
			expTyping:  true,
		},
		"finished stream starts a new message": {
			chunks: []streamChunk{
				{content: "one", done: true},
				{content: "two", done: true},
			},
			expContent: []string{"one", "two"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := New(nil)
			for _, c := range tt.chunks {
				s.ApplyStream(c.content, c.fullContent, "llama", c.done)
			}

			msgs := s.Messages()
			testutil.AssertEqual(t, "message count", len(msgs), len(tt.expContent))
			for i, want := range tt.expContent {
				testutil.AssertEqual(t, "content", msgs[i].Content, want)
				testutil.AssertEqual(t, "role", msgs[i].Role, RoleAssistant)
			}
			testutil.AssertEqual(t, "typing", s.Chat().IsTyping, tt.expTyping)
		})
	}
}

type streamChunk struct {
	content     string
	fullContent string
	done        bool
}

func TestApplyStream_StreamingScenario(t *testing.T) {
	s := New(nil)
	s.AddMessage(ChatMessage{Role: RoleUser, Content: "hi"})

	s.ApplyStream("Hel", "", "", false)
	s.ApplyStream("lo", "", "", false)
	last := s.ApplyStream("", "", "", true)

	msgs := s.Messages()
	testutil.AssertEqual(t, "count", len(msgs), 2)
	testutil.AssertEqual(t, "user first", msgs[0].Role, RoleUser)
	testutil.AssertEqual(t, "content", msgs[1].Content, "Hello")
	testutil.AssertEqual(t, "streaming", msgs[1].IsStreaming, false)
	testutil.AssertEqual(t, "returned", last.ID, msgs[1].ID)
}

func TestAddMessage_FillsDefaults(t *testing.T) {
	fake := clock.Fake(time.Unix(5000, 0))
	s := New(nil, WithClock(fake))

	msg := s.AddMessage(ChatMessage{Role: RoleUser, Content: "hi"})
	if msg.ID == "" {
		t.Fatal("expected generated id")
	}
	testutil.AssertEqual(t, "timestamp", msg.Timestamp.Equal(time.Unix(5000, 0)), true)

	kept := s.AddMessage(ChatMessage{ID: "m-1", Role: RoleSystem, Content: "x"})
	testutil.AssertEqual(t, "id kept", kept.ID, "m-1")
}

func TestChatHistory(t *testing.T) {
	s := New(nil)
	s.AddMessage(ChatMessage{Role: RoleUser, Content: "old"})

	s.SetChatHistory([]ChatMessage{
		{ID: "a", Role: RoleUser, Content: "q"},
		{ID: "b", Role: RoleAssistant, Content: "a"},
	})
	testutil.AssertEqual(t, "replaced", len(s.Messages()), 2)

	s.ClearMessages()
	msgs := s.Messages()
	testutil.AssertEqual(t, "cleared", len(msgs), 0)
	if msgs == nil {
		t.Fatal("expected empty, non-nil messages")
	}
}

func TestChat_ModelAndTyping(t *testing.T) {
	s := New(nil)
	s.SetModel("mistral")
	s.SetTyping(true)

	c := s.Chat()
	testutil.AssertEqual(t, "model", c.Model, "mistral")
	testutil.AssertEqual(t, "typing", c.IsTyping, true)

	c.Messages = append(c.Messages, ChatMessage{Content: "leak"})
	testutil.AssertEqual(t, "copy", len(s.Messages()), 0)
}
