package bot

import (
	"context"
	"errors"
	"sync"
)

// mockMessenger records replies and typing calls.
type mockMessenger struct {
	mu        sync.Mutex
	replies   []Reply
	typing    []string
	sendErrs  []error // consumed in order by Send; nil entries succeed
	typingErr error
}

func (m *mockMessenger) Send(ctx context.Context, reply Reply) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply)
	if len(m.sendErrs) > 0 {
		err := m.sendErrs[0]
		m.sendErrs = m.sendErrs[1:]
		return err
	}
	return nil
}

func (m *mockMessenger) Typing(ctx context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.typing = append(m.typing, conversationID)
	return m.typingErr
}

func (m *mockMessenger) sent() []Reply {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Reply(nil), m.replies...)
}

// mockAsker records questions and answers with a fixed text.
type mockAsker struct {
	mu        sync.Mutex
	questions []string
	answer    string
	panicMsg  string
}

func (a *mockAsker) Ask(ctx context.Context, question string) string {
	a.mu.Lock()
	a.questions = append(a.questions, question)
	a.mu.Unlock()
	if a.panicMsg != "" {
		panic(a.panicMsg)
	}
	return a.answer
}

func (a *mockAsker) asked() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.questions...)
}

var errSend = errors.New("Bad Request: can't parse entities")
