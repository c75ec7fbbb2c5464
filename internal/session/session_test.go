package session

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Elite-tch/privacycart/internal/cart"
	"github.com/Elite-tch/privacycart/internal/model"
	"github.com/Elite-tch/privacycart/internal/overlay"
	"github.com/Elite-tch/privacycart/internal/sequencer"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	epoch = time.Date(2026, 2, 4, 4, 22, 0, 0, time.UTC)

	soundX1 = model.Product{ID: "p1", Name: "Quantum Sound X-1", Price: "0.24 NEAR", PrivacyLevel: model.PrivacyVerified}
	nova    = model.Product{ID: "p4", Name: "Nova Smart Watch", Price: "45.2 NEAR", PrivacyLevel: model.PrivacyHigh}
	vault   = model.Product{ID: "p-ai-1", Name: "Titan Crypto Vault H3", Price: "124.0 NEAR", PrivacyLevel: model.PrivacyVerified}
)

func testLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

func testSettings() Settings {
	return Settings{
		CheckoutDelay:  sequencer.DefaultCheckoutDelay,
		Intent:         sequencer.DefaultIntentDelays,
		ChatReplyDelay: sequencer.DefaultChatReplyDelay,
		NetworkFee:     cart.DefaultNetworkFee,
		Suggestions:    []model.Product{vault},
		ChatProducts:   []model.Product{soundX1},
	}
}

type settlements struct {
	mu  sync.Mutex
	got []Settlement
}

func (s *settlements) record(st Settlement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, st)
}

func (s *settlements) all() []Settlement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Settlement(nil), s.got...)
}

func newTestManager() (*Manager, *sequencer.ManualScheduler, *settlements) {
	sched := sequencer.NewManualScheduler(epoch)
	m := NewManager(testSettings(), sched, time.Hour, testLogger())
	rec := &settlements{}
	m.OnSettled(rec.record)
	return m, sched, rec
}

func snapshot(t *testing.T, s *Session) State {
	t.Helper()
	state, err := s.Snapshot()
	require.NoError(t, err)
	return state
}

func TestAddToCartClosesProductDetail(t *testing.T) {
	m, _, _ := newTestManager()
	s := m.Create()

	require.NoError(t, s.SelectProduct(nova))
	state := snapshot(t, s)
	require.NotNil(t, state.SelectedProduct)
	assert.True(t, state.Overlays.Visible[overlay.ProductDetail])
	assert.True(t, state.Overlays.ScrollLocked)

	require.NoError(t, s.AddToCart(nova))
	state = snapshot(t, s)
	assert.Nil(t, state.SelectedProduct)
	assert.False(t, state.Overlays.Visible[overlay.ProductDetail])
	assert.False(t, state.Overlays.ScrollLocked)
	assert.Equal(t, 1, state.Cart.Count)
}

func TestCheckoutFlowRecordsSettlement(t *testing.T) {
	m, sched, rec := newTestManager()
	s := m.Create()

	require.NoError(t, s.AddToCart(soundX1))
	require.NoError(t, s.AddToCart(nova))
	require.NoError(t, s.OpenDashboard())

	require.NoError(t, s.StartCheckout())
	state := snapshot(t, s)
	assert.False(t, state.Overlays.Visible[overlay.Dashboard])
	assert.True(t, state.Overlays.Visible[overlay.Checkout])
	assert.Equal(t, sequencer.CheckoutState{Step: sequencer.StepReview, ItemCount: 2}, state.Checkout)

	require.NoError(t, s.ConfirmPayment())
	assert.Equal(t, sequencer.StepProcessing, snapshot(t, s).Checkout.Step)

	sched.Advance(sequencer.DefaultCheckoutDelay)
	assert.Equal(t, sequencer.StepSuccess, snapshot(t, s).Checkout.Step)

	got := rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, s.ID, got[0].SessionID)
	assert.Len(t, got[0].Items, 2)
	assert.Equal(t, "45.4401", got[0].Total.StringFixed(4))
	assert.Equal(t, "NEAR", got[0].Currency)
	assert.Equal(t, epoch.Add(sequencer.DefaultCheckoutDelay), got[0].SettledAt)

	require.NoError(t, s.ReturnToMarket())
	state = snapshot(t, s)
	assert.Equal(t, 0, state.Cart.Count)
	assert.Equal(t, sequencer.StepReview, state.Checkout.Step)
	assert.False(t, state.Overlays.ScrollLocked)
}

func TestConfirmPaymentRequiresCheckoutOverlay(t *testing.T) {
	m, _, _ := newTestManager()
	s := m.Create()

	require.ErrorIs(t, s.ConfirmPayment(), ErrOverlayClosed)
}

func TestCloseCheckoutDiscardsSettlement(t *testing.T) {
	m, sched, rec := newTestManager()
	s := m.Create()

	require.NoError(t, s.AddToCart(nova))
	require.NoError(t, s.StartCheckout())
	require.NoError(t, s.ConfirmPayment())
	sched.Advance(time.Second)

	require.NoError(t, s.CloseCheckout())
	sched.Advance(sequencer.DefaultCheckoutDelay)

	require.NoError(t, s.StartCheckout())
	assert.Equal(t, sequencer.StepReview, snapshot(t, s).Checkout.Step)
	assert.Empty(t, rec.all())
}

func TestIntentSuggestionOpensProductDetail(t *testing.T) {
	m, sched, _ := newTestManager()
	s := m.Create()

	require.NoError(t, s.OpenIntent("secure gift"))
	assert.True(t, snapshot(t, s).Overlays.Visible[overlay.Intent])

	_, err := s.SelectSuggestion(vault.ID)
	require.ErrorIs(t, err, sequencer.ErrSuggestionsLocked)

	sched.Advance(4500 * time.Millisecond)
	p, err := s.SelectSuggestion(vault.ID)
	require.NoError(t, err)
	assert.Equal(t, vault.ID, p.ID)

	state := snapshot(t, s)
	assert.False(t, state.Overlays.Visible[overlay.Intent])
	assert.True(t, state.Overlays.Visible[overlay.ProductDetail])
	require.NotNil(t, state.SelectedProduct)
	assert.Equal(t, vault.ID, state.SelectedProduct.ID)
	assert.False(t, state.Intent.Open)
}

func TestOpenIntentRejectsBlankQuery(t *testing.T) {
	m, _, _ := newTestManager()
	s := m.Create()

	require.ErrorIs(t, s.OpenIntent(" "), sequencer.ErrEmptyQuery)
	assert.False(t, snapshot(t, s).Overlays.Visible[overlay.Intent])
}

func TestCloseIntentLeavesOtherOverlays(t *testing.T) {
	m, sched, _ := newTestManager()
	s := m.Create()

	require.NoError(t, s.OpenDashboard())
	require.NoError(t, s.OpenIntent("gift"))
	require.NoError(t, s.CloseIntent())
	sched.Advance(time.Minute)

	state := snapshot(t, s)
	assert.True(t, state.Overlays.Visible[overlay.Dashboard])
	assert.False(t, state.Overlays.Visible[overlay.Intent])
	assert.Empty(t, state.Intent.Dialogue)
}

func TestRemoveFromCartOutOfRange(t *testing.T) {
	m, _, _ := newTestManager()
	s := m.Create()

	require.ErrorIs(t, s.RemoveFromCart(0), cart.ErrIndexOutOfRange)
}

func TestSendChat(t *testing.T) {
	m, sched, _ := newTestManager()
	s := m.Create()

	require.NoError(t, s.SendChat("headphones"))
	sched.Advance(sequencer.DefaultChatReplyDelay)

	chat := snapshot(t, s).Chat
	require.Len(t, chat.Messages, 3)
	assert.Equal(t, []model.Product{soundX1}, chat.Messages[2].Products)
}

func TestClosedSessionDiscardsEverything(t *testing.T) {
	m, sched, rec := newTestManager()
	s := m.Create()

	require.NoError(t, s.AddToCart(nova))
	require.NoError(t, s.StartCheckout())
	require.NoError(t, s.ConfirmPayment())
	require.NoError(t, s.OpenIntent("gift"))
	require.NoError(t, s.SendChat("hi"))

	require.NoError(t, m.Close(s.ID))
	sched.Advance(time.Hour)

	assert.Empty(t, rec.all())
	require.ErrorIs(t, s.AddToCart(nova), ErrClosed)
	_, err := s.Snapshot()
	require.ErrorIs(t, err, ErrClosed)

	_, err = m.Get(s.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, m.Close(s.ID), ErrNotFound)
}

func TestAddToCartKeepsOneCurrency(t *testing.T) {
	m, _, _ := newTestManager()
	s := m.Create()

	require.NoError(t, s.AddToCart(soundX1))
	require.NoError(t, s.SelectProduct(model.Product{ID: "usd", Price: "10 USD"}))

	err := s.AddToCart(model.Product{ID: "usd", Price: "10 USD"})
	require.ErrorIs(t, err, cart.ErrCurrencyMismatch)

	state := snapshot(t, s)
	assert.Equal(t, 1, state.Cart.Count)
	assert.Equal(t, "NEAR", state.Cart.Currency)
	require.NotNil(t, state.SelectedProduct)
	assert.True(t, state.Overlays.Visible[overlay.ProductDetail])
}
