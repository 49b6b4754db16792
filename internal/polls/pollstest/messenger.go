package pollstest

import (
	"context"
	"errors"
	"sync"

	"shift_coordination_system/internal/services"
)

var ErrMessengerDown = errors.New("messenger is down")

type Message struct {
	ChatID    int64
	MessageID int
	Text      string
	Keyboard  [][]services.Button
}

// Messenger records outgoing messages and hands out increasing message ids.
type Messenger struct {
	mu      sync.Mutex
	nextID  int
	failing bool

	Sent    []Message
	Edited  []Message
	Deleted []Message
}

func NewMessenger() *Messenger {
	return &Messenger{nextID: 100}
}

func (m *Messenger) SetFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failing = failing
}

func (m *Messenger) SendMessage(ctx context.Context, chatID int64, text string, keyboard [][]services.Button) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return 0, ErrMessengerDown
	}

	m.nextID++
	m.Sent = append(m.Sent, Message{ChatID: chatID, MessageID: m.nextID, Text: text, Keyboard: keyboard})
	return m.nextID, nil
}

func (m *Messenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string, keyboard [][]services.Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return ErrMessengerDown
	}

	m.Edited = append(m.Edited, Message{ChatID: chatID, MessageID: messageID, Text: text, Keyboard: keyboard})
	return nil
}

func (m *Messenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return ErrMessengerDown
	}

	m.Deleted = append(m.Deleted, Message{ChatID: chatID, MessageID: messageID})
	return nil
}

func (m *Messenger) SentTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	texts := make([]string, 0, len(m.Sent))
	for _, message := range m.Sent {
		texts = append(texts, message.Text)
	}
	return texts
}

func (m *Messenger) LastEdit() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Edited) == 0 {
		return Message{}, false
	}
	return m.Edited[len(m.Edited)-1], true
}
