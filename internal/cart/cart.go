// Package cart holds the ordered list of products chosen in one session.
package cart

import (
	"errors"
	"fmt"

	"github.com/Elite-tch/privacycart/internal/model"

	"github.com/shopspring/decimal"
)

var (
	ErrIndexOutOfRange  = errors.New("cart index out of range")
	ErrCurrencyMismatch = errors.New("currency does not match cart")
)

// DefaultNetworkFee is charged once per checkout regardless of cart size.
var DefaultNetworkFee = decimal.RequireFromString("0.0001")

// Store is not safe for concurrent use; the owning session serialises access.
type Store struct {
	items      []model.Product
	networkFee decimal.Decimal
}

func NewStore(networkFee decimal.Decimal) *Store {
	return &Store{networkFee: networkFee}
}

// Add appends the product. Duplicates are kept as separate entries; every
// entry must carry the currency of the first one.
func (s *Store) Add(p model.Product) error {
	if cur := s.Currency(); cur != "" && p.Currency() != cur {
		return fmt.Errorf("%w: %s in a %s cart", ErrCurrencyMismatch, p.Currency(), cur)
	}
	s.items = append(s.items, p)
	return nil
}

func (s *Store) RemoveAt(index int) (model.Product, error) {
	if index < 0 || index >= len(s.items) {
		return model.Product{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s.items))
	}
	removed := s.items[index]
	s.items = append(s.items[:index], s.items[index+1:]...)
	return removed, nil
}

// Items returns a copy in insertion order.
func (s *Store) Items() []model.Product {
	out := make([]model.Product, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	return len(s.items)
}

func (s *Store) Clear() {
	s.items = nil
}

func (s *Store) Subtotal() (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range s.items {
		amount, err := p.Amount()
		if err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(amount)
	}
	return sum, nil
}

func (s *Store) Total() (decimal.Decimal, error) {
	subtotal, err := s.Subtotal()
	if err != nil {
		return decimal.Zero, err
	}
	return subtotal.Add(s.networkFee), nil
}

// Currency is the tag of the first entry, "" for an empty cart.
func (s *Store) Currency() string {
	if len(s.items) == 0 {
		return ""
	}
	return s.items[0].Currency()
}

type Summary struct {
	Items      []model.Product `json:"items"`
	Count      int             `json:"count"`
	Subtotal   string          `json:"subtotal"`
	NetworkFee string          `json:"network_fee"`
	Total      string          `json:"total"`
	Currency   string          `json:"currency"`
}

func (s *Store) Summary() (Summary, error) {
	subtotal, err := s.Subtotal()
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Items:      s.Items(),
		Count:      len(s.items),
		Subtotal:   subtotal.StringFixed(2),
		NetworkFee: s.networkFee.StringFixed(4),
		Total:      subtotal.Add(s.networkFee).StringFixed(4),
		Currency:   s.Currency(),
	}, nil
}
