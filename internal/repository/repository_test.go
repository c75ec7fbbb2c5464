package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Elite-tch/privacycart/internal/client"
	"github.com/Elite-tch/privacycart/internal/config"
	"github.com/Elite-tch/privacycart/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := client.InitDBClient(config.Database{Driver: "sqlite", URL: ":memory:"}, false)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestProductSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(newTestDB(t))

	require.NoError(t, repo.Seed(ctx))
	require.NoError(t, repo.Seed(ctx))

	market, err := repo.GetByType(ctx, model.ProductTypeMarket)
	require.NoError(t, err)
	require.Len(t, market, 6)

	ids := make([]string, len(market))
	for i, p := range market {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5", "p6"}, ids)

	suggestions, err := repo.GetByType(ctx, model.ProductTypeAISuggestion)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "p-ai-1", suggestions[0].ID)
}

func TestProductFindByID(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(newTestDB(t))
	require.NoError(t, repo.Seed(ctx))

	p, err := repo.FindByID(ctx, "p4")
	require.NoError(t, err)
	assert.Equal(t, "Nova Smart Watch", p.Name)
	assert.Equal(t, model.PrivacyHigh, p.PrivacyLevel)
	assert.Equal(t, []string{"ECG Monitoring", "50m Water Resistance", "On-Device AI Health"}, p.Details)

	_, err = repo.FindByID(ctx, "nope")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestParseCatalogRejectsBadEntries(t *testing.T) {
	_, err := ParseCatalog([]byte(`
products:
  - id: x
    price: 1 NEAR
    privacy_level: Low
`))
	require.Error(t, err)

	_, err = ParseCatalog([]byte(`
products:
  - id: x
    price: 1 NEAR
    privacy_level: High
  - id: x
    price: 2 NEAR
    privacy_level: High
`))
	require.ErrorContains(t, err, "duplicate id")
}

func TestParseCatalogDefaultsType(t *testing.T) {
	products, err := ParseCatalog([]byte(`
products:
  - id: a
    price: 1 NEAR
    privacy_level: Medium
`))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, model.ProductTypeMarket, products[0].Type)
}

func TestReceiptListRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewReceiptRepository(newTestDB(t))

	base := time.Date(2026, 2, 2, 21, 5, 0, 0, time.UTC)
	for i, id := range []string{"tx_01", "tx_02", "tx_03"} {
		require.NoError(t, repo.Create(ctx, &model.Receipt{
			ID:        id,
			SessionID: "s1",
			Hash:      "0x" + id,
			Status:    model.ReceiptSecured,
			Products:  []string{"Quantum Sound X-1"},
			ItemCount: 1,
			Total:     "0.2401",
			Currency:  "NEAR",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	receipts, err := repo.ListRecent(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "tx_03", receipts[0].ID)
	assert.Equal(t, "tx_02", receipts[1].ID)
	assert.Equal(t, []string{"Quantum Sound X-1"}, receipts[0].Products)

	receipts, err = repo.ListRecent(ctx, "s2", 10)
	require.NoError(t, err)
	assert.Empty(t, receipts)
}

func TestReceiptSeedIsSharedAcrossSessions(t *testing.T) {
	ctx := context.Background()
	repo := NewReceiptRepository(newTestDB(t))

	require.NoError(t, repo.Seed(ctx))
	require.NoError(t, repo.Seed(ctx))
	require.NoError(t, repo.Create(ctx, &model.Receipt{
		ID:        "tx_own",
		SessionID: "s1",
		Hash:      "0xown",
		Status:    model.ReceiptSecured,
		Total:     "0.2401",
		CreatedAt: time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC),
	}))

	mine, err := repo.ListRecent(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, mine, 4)
	assert.Equal(t, "tx_own", mine[0].ID)
	assert.Equal(t, "tx_01", mine[1].ID)
	assert.Equal(t, "tx_03", mine[3].ID)
	assert.Equal(t, 1, mine[1].ItemCount)

	theirs, err := repo.ListRecent(ctx, "s2", 10)
	require.NoError(t, err)
	require.Len(t, theirs, 3)
	for _, r := range theirs {
		assert.Equal(t, model.SeedSessionID, r.SessionID)
	}
}

func TestAgentSeedAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewAgentRepository(newTestDB(t))

	require.NoError(t, repo.Seed(ctx))
	require.NoError(t, repo.Seed(ctx))

	agents, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 3)
	assert.Equal(t, "Price Watcher", agents[0].Name)
	assert.Equal(t, model.AgentIdle, agents[2].Status)
	assert.Equal(t, "98.5%", agents[2].Uptime)
}

func TestParseVaultSeed(t *testing.T) {
	agents, history, err := ParseVaultSeed(vaultSeed)
	require.NoError(t, err)
	assert.Len(t, agents, 3)
	require.Len(t, history, 3)
	assert.Equal(t, "0x7a2...f39e", history[0].ShortHash())
	assert.Equal(t, model.ReceiptSecured, history[0].Status)
	assert.Equal(t, time.Date(2026, 2, 4, 4, 22, 0, 0, time.UTC), history[0].CreatedAt.UTC())

	_, _, err = ParseVaultSeed([]byte(`
agents:
  - id: a9
    name: Ghost
    status: Haunting
`))
	require.Error(t, err)
}
