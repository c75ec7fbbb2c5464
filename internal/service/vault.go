package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/Elite-tch/privacycart/internal/model"
	"github.com/Elite-tch/privacycart/internal/repository"
	"github.com/Elite-tch/privacycart/internal/session"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

const (
	defaultReceiptLimit = 20
	maxReceiptLimit     = 100
	recordTimeout       = 5 * time.Second
)

type VaultService interface {
	RecordSettlement(ctx context.Context, settlement session.Settlement) (*model.Receipt, error)
	ListReceipts(ctx context.Context, sessionID string, limit int) ([]*model.Receipt, error)
	ListAgents(ctx context.Context) ([]*model.Agent, error)
	SettlementHandler() session.SettlementHandler
}

type vaultServiceImpl struct {
	receiptRepo repository.ReceiptRepository
	agentRepo   repository.AgentRepository
	logger      *log.Logger
}

func NewVaultService(receiptRepo repository.ReceiptRepository, agentRepo repository.AgentRepository, logger *log.Logger) VaultService {
	return &vaultServiceImpl{
		receiptRepo: receiptRepo,
		agentRepo:   agentRepo,
		logger:      logger,
	}
}

func (s *vaultServiceImpl) RecordSettlement(ctx context.Context, settlement session.Settlement) (*model.Receipt, error) {
	names := make([]string, len(settlement.Items))
	ids := make([]string, len(settlement.Items))
	for i, p := range settlement.Items {
		names[i] = p.Name
		ids[i] = p.ID
	}

	receipt := &model.Receipt{
		ID:        "tx_" + uuid.NewString(),
		SessionID: settlement.SessionID,
		Status:    model.ReceiptSecured,
		Products:  names,
		ItemCount: len(settlement.Items),
		Total:     settlement.Total.StringFixed(4),
		Currency:  settlement.Currency,
		CreatedAt: settlement.SettledAt,
	}
	receipt.Hash = receiptHash(receipt.ID, ids, receipt.Total)
	receipt.HashPreview = receipt.ShortHash()

	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		return nil, fmt.Errorf("store receipt: %w", err)
	}
	return receipt, nil
}

func receiptHash(id string, productIDs []string, total string) string {
	sum := sha256.Sum256([]byte(id + "|" + strings.Join(productIDs, ",") + "|" + total))
	return "0x" + hex.EncodeToString(sum[:])
}

// ListReceipts returns the session's own receipts plus the shared history.
func (s *vaultServiceImpl) ListReceipts(ctx context.Context, sessionID string, limit int) ([]*model.Receipt, error) {
	if limit <= 0 {
		limit = defaultReceiptLimit
	}
	if limit > maxReceiptLimit {
		limit = maxReceiptLimit
	}

	receipts, err := s.receiptRepo.ListRecent(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}
	for _, r := range receipts {
		r.HashPreview = r.ShortHash()
	}
	return receipts, nil
}

func (s *vaultServiceImpl) ListAgents(ctx context.Context) ([]*model.Agent, error) {
	return s.agentRepo.List(ctx)
}

// SettlementHandler stores receipts for settled checkouts. It runs on the
// sequencer's timer goroutine, so it uses its own deadline.
func (s *vaultServiceImpl) SettlementHandler() session.SettlementHandler {
	return func(settlement session.Settlement) {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		receipt, err := s.RecordSettlement(ctx, settlement)
		if err != nil {
			s.logger.Errorj(log.JSON{"msg": "record receipt", "session_id": settlement.SessionID, "error": err.Error()})
			return
		}
		s.logger.Infoj(log.JSON{"msg": "receipt stored", "session_id": settlement.SessionID, "receipt_id": receipt.ID, "hash": receipt.HashPreview})
	}
}
