package sequencer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Elite-tch/privacycart/internal/model"

	"github.com/google/uuid"
)

const (
	GreetingMessage = "Hello! I'm your PrivateCart agent. I can help you find products privately and execute cross-chain purchases. What are you looking for today?"
	AnalysisMessage = "Analysis complete. I've successfully routed your query through the Near AI Private Enclave. Your data remained encrypted throughout the search across decentralized inventory nodes."
)

const DefaultChatReplyDelay = 3 * time.Second

var ErrBusy = errors.New("assistant is still replying")

type ChatState struct {
	Messages []model.ChatMessage `json:"messages"`
	Typing   bool                `json:"typing"`
}

// ChatSequencer answers every user message with the same analysis reply,
// attaching a fixed product selection. One reply is in flight at a time.
type ChatSequencer struct {
	sched    Scheduler
	delay    time.Duration
	products []model.Product

	mu       sync.Mutex
	messages []model.ChatMessage
	typing   bool
	run      *run
}

func NewChatSequencer(sched Scheduler, delay time.Duration, products []model.Product) *ChatSequencer {
	c := &ChatSequencer{
		sched:    sched,
		delay:    delay,
		products: products,
	}
	c.messages = c.greeting()
	return c
}

func (c *ChatSequencer) greeting() []model.ChatMessage {
	return []model.ChatMessage{{
		ID:        uuid.NewString(),
		Role:      model.RoleAssistant,
		Content:   GreetingMessage,
		Timestamp: c.sched.Now().Add(-5 * time.Minute),
	}}
}

func (c *ChatSequencer) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.typing {
		return ErrBusy
	}

	c.messages = append(c.messages, model.ChatMessage{
		ID:        uuid.NewString(),
		Role:      model.RoleUser,
		Content:   text,
		Timestamp: c.sched.Now(),
		Status:    model.StatusSent,
	})
	c.typing = true

	r := startRun(ctx)
	c.run = r
	r.after(c.sched, c.delay, func() {
		c.reply(r)
	})
	return nil
}

func (c *ChatSequencer) reply(r *run) {
	c.mu.Lock()
	if r.done() || c.run != r {
		c.mu.Unlock()
		return
	}
	c.messages = append(c.messages, model.ChatMessage{
		ID:        uuid.NewString(),
		Role:      model.RoleAssistant,
		Content:   AnalysisMessage,
		Products:  append([]model.Product(nil), c.products...),
		Timestamp: c.sched.Now(),
		Status:    model.StatusVerifying,
	})
	c.typing = false
	c.run = nil
	c.mu.Unlock()

	r.end()
}

// Reset drops a pending reply and restores the greeting.
func (c *ChatSequencer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.run.end()
	c.run = nil
	c.typing = false
	c.messages = c.greeting()
}

func (c *ChatSequencer) State() ChatState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return ChatState{
		Messages: append([]model.ChatMessage(nil), c.messages...),
		Typing:   c.typing,
	}
}
