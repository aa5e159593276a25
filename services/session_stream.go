package services

import (
	"bufio"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Event types pushed to session subscribers.
const (
	EventState          = "state"
	EventQuizInvitation = "quiz_invitation"
	EventQuiz           = "quiz"
	EventNotification   = "notification"
	EventView           = "view"
)

const (
	subscriberBuffer  = 16
	keepaliveInterval = 15 * time.Second
)

// User-facing messages for failed AI calls.
const (
	ScanFailedMessage = "Ops! Não conseguimos analisar essa imagem. Tente novamente com melhor iluminação."
	QuizFailedMessage = "Não foi possível gerar o quiz agora."
)

type SessionEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Notification is a transient user-facing message (scan or quiz failures, rewards).
type Notification struct {
	Kind    string `json:"kind"` // success | error | info
	Message string `json:"message"`
}

// eventHub fans session events out to stream subscribers. Slow subscribers lose events
// rather than block a transition.
type eventHub struct {
	mu     sync.Mutex
	subs   map[chan SessionEvent]struct{}
	closed bool
}

func newEventHub() *eventHub {
	return &eventHub{subs: make(map[chan SessionEvent]struct{})}
}

func (h *eventHub) subscribe() (<-chan SessionEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan SessionEvent, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
}

func (h *eventHub) publish(ev SessionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *eventHub) subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *eventHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		close(ch)
	}
	h.subs = map[chan SessionEvent]struct{}{}
}

// StreamSessionSSE streams the session's events until the client goes away or the
// session is torn down. The first event is always the current state.
func StreamSessionSSE(c *fiber.Ctx, sess *Session) error {
	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	events, unsubscribe := sess.Subscribe()
	initial := SessionEvent{Type: EventState, Data: sess.Snapshot()}
	done := c.Context().Done()
	log := sess.log

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()

		ticker := time.NewTicker(keepaliveInterval)
		defer ticker.Stop()

		if err := writeEvent(w, initial); err != nil {
			return
		}

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					// session torn down
					return
				}
				if err := writeEvent(w, ev); err != nil {
					log.Debug("SSE client gone", "error", err.Error())
					return
				}
			case <-ticker.C:
				w.WriteString(":\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})

	return nil
}

func writeEvent(w *bufio.Writer, ev SessionEvent) error {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload); err != nil {
		return err
	}
	return w.Flush()
}
