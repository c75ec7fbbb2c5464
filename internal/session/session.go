// Package session owns the per-visitor state of the marketplace: the cart,
// overlay visibility and the three scripted sequences. Every timer started
// on behalf of a session is cancelled when the session closes.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Elite-tch/privacycart/internal/cart"
	"github.com/Elite-tch/privacycart/internal/model"
	"github.com/Elite-tch/privacycart/internal/overlay"
	"github.com/Elite-tch/privacycart/internal/sequencer"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
)

var (
	ErrClosed        = errors.New("session closed")
	ErrOverlayClosed = errors.New("overlay is not open")
)

type Settings struct {
	CheckoutDelay  time.Duration
	Intent         sequencer.IntentDelays
	ChatReplyDelay time.Duration
	NetworkFee     decimal.Decimal
	Suggestions    []model.Product
	ChatProducts   []model.Product
}

// Settlement describes a checkout that reached success.
type Settlement struct {
	SessionID string
	Items     []model.Product
	Total     decimal.Decimal
	Currency  string
	SettledAt time.Time
}

type SettlementHandler func(Settlement)

type State struct {
	ID              string                  `json:"id"`
	Overlays        overlay.State           `json:"overlays"`
	SelectedProduct *model.Product          `json:"selected_product,omitempty"`
	Cart            cart.Summary            `json:"cart"`
	Checkout        sequencer.CheckoutState `json:"checkout"`
	Intent          sequencer.IntentState   `json:"intent"`
	Chat            sequencer.ChatState     `json:"chat"`
}

type Session struct {
	ID string

	ctx       context.Context
	cancel    context.CancelFunc
	sched     sequencer.Scheduler
	logger    *log.Logger
	onSettled SettlementHandler

	mu       sync.Mutex
	closed   bool
	lastSeen time.Time
	selected *model.Product
	cart     *cart.Store
	overlays *overlay.Controller
	checkout *sequencer.CheckoutSequencer
	intent   *sequencer.IntentSequencer
	chat     *sequencer.ChatSequencer
}

func newSession(parent context.Context, id string, settings Settings, sched sequencer.Scheduler, logger *log.Logger, onSettled SettlementHandler) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		ID:        id,
		ctx:       ctx,
		cancel:    cancel,
		sched:     sched,
		logger:    logger,
		onSettled: onSettled,
		lastSeen:  sched.Now(),
		cart:      cart.NewStore(settings.NetworkFee),
		checkout:  sequencer.NewCheckoutSequencer(sched, settings.CheckoutDelay),
		intent:    sequencer.NewIntentSequencer(sched, settings.Intent, settings.Suggestions),
		chat:      sequencer.NewChatSequencer(sched, settings.ChatReplyDelay, settings.ChatProducts),
	}
	s.overlays = overlay.NewController(func(locked bool) {
		logger.Debugj(log.JSON{"session_id": id, "scroll_locked": locked})
	})
	return s
}

// lock takes the session lock and fails if the session is closed.
// Callers must unlock on success.
func (s *Session) lock() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.lastSeen = s.sched.Now()
	return nil
}

func (s *Session) SelectProduct(p model.Product) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	s.selected = &p
	s.overlays.Open(overlay.ProductDetail)
	return nil
}

func (s *Session) CloseProduct() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	s.selected = nil
	s.overlays.Close(overlay.ProductDetail)
	return nil
}

// AddToCart appends p and dismisses the product details.
func (s *Session) AddToCart(p model.Product) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if err := s.cart.Add(p); err != nil {
		return err
	}
	s.selected = nil
	s.overlays.Close(overlay.ProductDetail)
	return nil
}

func (s *Session) RemoveFromCart(index int) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	_, err := s.cart.RemoveAt(index)
	return err
}

func (s *Session) OpenDashboard() error {
	return s.setOverlay(overlay.Dashboard, true)
}

func (s *Session) CloseDashboard() error {
	return s.setOverlay(overlay.Dashboard, false)
}

func (s *Session) setOverlay(n overlay.Name, open bool) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if open {
		s.overlays.Open(n)
	} else {
		s.overlays.Close(n)
	}
	return nil
}

// StartCheckout swaps the dashboard for the checkout overlay at review.
func (s *Session) StartCheckout() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	s.overlays.Close(overlay.Dashboard)
	s.overlays.Open(overlay.Checkout)
	s.checkout.Begin(s.cart.Len())
	return nil
}

// ConfirmPayment settles the cart as it is now; later cart edits do not
// change what the receipt records.
func (s *Session) ConfirmPayment() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if !s.overlays.IsOpen(overlay.Checkout) {
		return fmt.Errorf("%w: checkout", ErrOverlayClosed)
	}

	total, err := s.cart.Total()
	if err != nil {
		return fmt.Errorf("cart total: %w", err)
	}
	settlement := Settlement{
		SessionID: s.ID,
		Items:     s.cart.Items(),
		Total:     total,
		Currency:  s.cart.Currency(),
	}

	return s.checkout.ConfirmPayment(s.ctx, func() {
		settlement.SettledAt = s.sched.Now()
		s.logger.Infoj(log.JSON{
			"msg":        "checkout settled",
			"session_id": s.ID,
			"items":      len(settlement.Items),
			"total":      settlement.Total.StringFixed(4),
		})
		if s.onSettled != nil {
			s.onSettled(settlement)
		}
	})
}

// CloseCheckout hides the overlay and discards a settlement still in flight.
func (s *Session) CloseCheckout() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	s.overlays.Close(overlay.Checkout)
	s.checkout.Reset()
	return nil
}

func (s *Session) ReturnToMarket() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	s.overlays.Close(overlay.Checkout)
	s.overlays.Close(overlay.Dashboard)
	s.cart.Clear()
	s.checkout.Reset()
	return nil
}

func (s *Session) OpenIntent(query string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if err := s.intent.Open(s.ctx, query); err != nil {
		return err
	}
	s.overlays.Open(overlay.Intent)
	return nil
}

func (s *Session) RefineIntent(text string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	return s.intent.Refine(text)
}

func (s *Session) CloseIntent() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	s.intent.Close()
	s.overlays.Close(overlay.Intent)
	return nil
}

// SelectSuggestion hands a suggested product to the details overlay and
// closes the intent overlay.
func (s *Session) SelectSuggestion(productID string) (model.Product, error) {
	if err := s.lock(); err != nil {
		return model.Product{}, err
	}
	defer s.mu.Unlock()

	p, err := s.intent.Suggestion(productID)
	if err != nil {
		return model.Product{}, err
	}
	s.selected = &p
	s.overlays.Open(overlay.ProductDetail)
	s.intent.Close()
	s.overlays.Close(overlay.Intent)
	return p, nil
}

func (s *Session) SendChat(text string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	return s.chat.Send(s.ctx, text)
}

// Close cancels every pending sequence. Closing twice is harmless.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	s.checkout.Reset()
	s.intent.Close()
	s.chat.Reset()
	s.overlays.CloseAll()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) Snapshot() (State, error) {
	if err := s.lock(); err != nil {
		return State{}, err
	}
	defer s.mu.Unlock()

	summary, err := s.cart.Summary()
	if err != nil {
		return State{}, fmt.Errorf("cart summary: %w", err)
	}

	state := State{
		ID:       s.ID,
		Overlays: s.overlays.State(),
		Cart:     summary,
		Checkout: s.checkout.State(),
		Intent:   s.intent.State(),
		Chat:     s.chat.State(),
	}
	if s.selected != nil {
		p := *s.selected
		state.SelectedProduct = &p
	}
	return state, nil
}
