package sequencer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Elite-tch/privacycart/internal/model"
)

type IntentStep string

const (
	StepLoading IntentStep = "loading"
	StepIntent  IntentStep = "intent"
)

const (
	VaultAccessMessage = "Accessing Encrypted Vault Record #0x42A. All personal metadata is being processed locally within the enclave. No raw data is visible to external servers."
	MatchMessage       = "Matched with 'Secure Gift' criteria from your historical vault data. I have curated these hardware-verified devices for your consideration."
	RefineAckMessage   = "Refining parameters within the secure enclave... Results updated."
)

var (
	ErrEmptyQuery        = errors.New("query is empty")
	ErrEmptyMessage      = errors.New("message is empty")
	ErrNotOpen           = errors.New("intent overlay is not open")
	ErrSuggestionsLocked = errors.New("suggestions are not available yet")
	ErrUnknownSuggestion = errors.New("unknown suggestion")
)

type IntentDelays struct {
	VaultAccess time.Duration
	Match       time.Duration
	RefineAck   time.Duration
}

var DefaultIntentDelays = IntentDelays{
	VaultAccess: 2000 * time.Millisecond,
	Match:       2500 * time.Millisecond,
	RefineAck:   1000 * time.Millisecond,
}

type Turn struct {
	Role    model.Role `json:"role"`
	Content string     `json:"content"`
}

type IntentState struct {
	Open        bool            `json:"open"`
	Query       string          `json:"query"`
	Step        IntentStep      `json:"step"`
	Dialogue    []Turn          `json:"dialogue"`
	Suggestions []model.Product `json:"suggestions,omitempty"`
}

// IntentSequencer plays the enclave script for a search query: a vault
// access turn, then a match turn that unlocks the suggestions.
type IntentSequencer struct {
	sched       Scheduler
	delays      IntentDelays
	suggestions []model.Product

	mu       sync.Mutex
	open     bool
	query    string
	step     IntentStep
	dialogue []Turn
	run      *run
}

func NewIntentSequencer(sched Scheduler, delays IntentDelays, suggestions []model.Product) *IntentSequencer {
	return &IntentSequencer{
		sched:       sched,
		delays:      delays,
		suggestions: suggestions,
		step:        StepLoading,
	}
}

// Open restarts the script for query. Timers belong to ctx; cancelling it
// stops the script wherever it is.
func (s *IntentSequencer) Open(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.discard()
	s.open = true
	s.query = query
	s.step = StepLoading
	s.dialogue = nil

	r := startRun(ctx)
	s.run = r
	r.after(s.sched, s.delays.VaultAccess, func() {
		s.vaultAccessed(r)
	})
	return nil
}

func (s *IntentSequencer) vaultAccessed(r *run) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.done() {
		return
	}
	s.dialogue = append(s.dialogue, Turn{Role: model.RoleAssistant, Content: VaultAccessMessage})
	r.after(s.sched, s.delays.Match, func() {
		s.matched(r)
	})
}

func (s *IntentSequencer) matched(r *run) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.done() {
		return
	}
	s.dialogue = append(s.dialogue, Turn{Role: model.RoleAssistant, Content: MatchMessage})
	s.step = StepIntent
}

// Refine appends a user turn and schedules the canned acknowledgement.
func (s *IntentSequencer) Refine(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open || s.run == nil {
		return ErrNotOpen
	}
	s.dialogue = append(s.dialogue, Turn{Role: model.RoleUser, Content: text})

	r := s.run
	r.after(s.sched, s.delays.RefineAck, func() {
		s.acknowledge(r)
	})
	return nil
}

func (s *IntentSequencer) acknowledge(r *run) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.done() {
		return
	}
	s.dialogue = append(s.dialogue, Turn{Role: model.RoleAssistant, Content: RefineAckMessage})
}

// Close cancels every pending turn and clears the overlay.
func (s *IntentSequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.discard()
	s.open = false
	s.query = ""
	s.step = StepLoading
	s.dialogue = nil
}

// Suggestion looks up a suggested product once the match turn has played.
func (s *IntentSequencer) Suggestion(id string) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open || s.step != StepIntent {
		return model.Product{}, ErrSuggestionsLocked
	}
	for _, p := range s.suggestions {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, fmt.Errorf("%w: %s", ErrUnknownSuggestion, id)
}

func (s *IntentSequencer) State() IntentState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := IntentState{
		Open:     s.open,
		Query:    s.query,
		Step:     s.step,
		Dialogue: append([]Turn(nil), s.dialogue...),
	}
	if s.open && s.step == StepIntent {
		state.Suggestions = append([]model.Product(nil), s.suggestions...)
	}
	return state
}

func (s *IntentSequencer) discard() {
	s.run.end()
	s.run = nil
}
