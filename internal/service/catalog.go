package service

import (
	"context"
	"fmt"

	"github.com/Elite-tch/privacycart/internal/config"
	"github.com/Elite-tch/privacycart/internal/model"
	"github.com/Elite-tch/privacycart/internal/repository"
	"github.com/Elite-tch/privacycart/internal/sequencer"
	"github.com/Elite-tch/privacycart/internal/session"

	"github.com/shopspring/decimal"
)

// CatalogService is the read-only product provider. Swapping the
// repository for a remote catalog leaves session logic untouched.
type CatalogService interface {
	FetchAll(ctx context.Context) ([]*model.Product, error)
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	Suggestions(ctx context.Context) ([]*model.Product, error)
}

type catalogServiceImpl struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogServiceImpl{
		productRepo: productRepo,
	}
}

func (s *catalogServiceImpl) FetchAll(ctx context.Context) ([]*model.Product, error) {
	return s.productRepo.GetByType(ctx, model.ProductTypeMarket)
}

func (s *catalogServiceImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, productID)
}

func (s *catalogServiceImpl) Suggestions(ctx context.Context) ([]*model.Product, error) {
	return s.productRepo.GetByType(ctx, model.ProductTypeAISuggestion)
}

// LoadSessionSettings resolves the catalog slices and simulation timings
// every new session starts from.
func LoadSessionSettings(ctx context.Context, catalog CatalogService, sim config.Simulation) (session.Settings, error) {
	fee, err := decimal.NewFromString(sim.NetworkFee)
	if err != nil {
		return session.Settings{}, fmt.Errorf("parse network fee %q: %w", sim.NetworkFee, err)
	}

	suggestions, err := catalog.Suggestions(ctx)
	if err != nil {
		return session.Settings{}, fmt.Errorf("load suggestions: %w", err)
	}

	market, err := catalog.FetchAll(ctx)
	if err != nil {
		return session.Settings{}, fmt.Errorf("load catalog: %w", err)
	}
	limit := sim.ChatProductLimit
	if limit < 0 || limit > len(market) {
		limit = len(market)
	}

	return session.Settings{
		CheckoutDelay: sim.CheckoutDelay,
		Intent: sequencer.IntentDelays{
			VaultAccess: sim.VaultAccessDelay,
			Match:       sim.IntentMatchDelay,
			RefineAck:   sim.RefineAckDelay,
		},
		ChatReplyDelay: sim.ChatReplyDelay,
		NetworkFee:     fee,
		Suggestions:    deref(suggestions),
		ChatProducts:   deref(market[:limit]),
	}, nil
}

func deref(products []*model.Product) []model.Product {
	out := make([]model.Product, len(products))
	for i, p := range products {
		out[i] = *p
	}
	return out
}
