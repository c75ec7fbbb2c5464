package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductTypeMarket       ProductType = "MARKET"
	ProductTypeAISuggestion ProductType = "AI_SUGGESTION"
)

type PrivacyLevel string

const (
	PrivacyHigh     PrivacyLevel = "High"
	PrivacyMedium   PrivacyLevel = "Medium"
	PrivacyVerified PrivacyLevel = "Verified"
)

func (l PrivacyLevel) Valid() bool {
	switch l {
	case PrivacyHigh, PrivacyMedium, PrivacyVerified:
		return true
	}
	return false
}

type Product struct {
	ID           string       `gorm:"primaryKey;size:64;not null" json:"id" yaml:"id"`
	Name         string       `gorm:"size:128;not null" json:"name" yaml:"name"`
	Price        string       `gorm:"size:32;not null" json:"price" yaml:"price"` // "0.24 NEAR"
	Provider     string       `gorm:"size:128" json:"provider" yaml:"provider"`
	PrivacyLevel PrivacyLevel `gorm:"size:16;not null" json:"privacyLevel" yaml:"privacy_level"`
	Image        string       `json:"image" yaml:"image"`
	Description  string       `json:"description" yaml:"description"`
	Details      []string     `gorm:"serializer:json" json:"details" yaml:"details"`
	Type         ProductType  `gorm:"size:32;index;not null" json:"-" yaml:"type"`
	Position     int          `gorm:"not null;default:0" json:"-" yaml:"-"` // catalog order
}

// Amount returns the numeric component of the price tag.
func (p Product) Amount() (decimal.Decimal, error) {
	fields := strings.Fields(p.Price)
	if len(fields) == 0 {
		return decimal.Zero, fmt.Errorf("product %s: empty price", p.ID)
	}
	amount, err := decimal.NewFromString(fields[0])
	if err != nil {
		return decimal.Zero, fmt.Errorf("product %s: parse price %q: %w", p.ID, p.Price, err)
	}
	return amount, nil
}

// Currency returns the tag following the amount, or "" when untagged.
func (p Product) Currency() string {
	fields := strings.Fields(p.Price)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

func (p Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product without id")
	}
	if !p.PrivacyLevel.Valid() {
		return fmt.Errorf("product %s: unknown privacy level %q", p.ID, p.PrivacyLevel)
	}
	if _, err := p.Amount(); err != nil {
		return err
	}
	return nil
}

type ReceiptStatus string

const ReceiptSecured ReceiptStatus = "Secured"

// SeedSessionID owns the seeded vault history, which every session lists.
const SeedSessionID = "seed"

// Receipt is one settled checkout in the vault history. SessionID is the
// bearer handle of the owning session and never leaves the server.
type Receipt struct {
	ID          string        `gorm:"primaryKey;size:64;not null" json:"id" yaml:"id"`
	SessionID   string        `gorm:"size:64;index;not null" json:"-" yaml:"-"`
	Hash        string        `gorm:"size:80;uniqueIndex;not null" json:"hash" yaml:"hash"`
	HashPreview string        `gorm:"-" json:"short_hash" yaml:"-"`
	Status      ReceiptStatus `gorm:"size:16;not null" json:"status" yaml:"status"`
	Products    []string      `gorm:"serializer:json" json:"products" yaml:"products"`
	ItemCount   int           `gorm:"not null" json:"item_count" yaml:"-"`
	Total       string        `gorm:"size:32;not null" json:"total" yaml:"total"` // 4dp
	Currency    string        `gorm:"size:16" json:"currency" yaml:"currency"`
	CreatedAt   time.Time     `gorm:"index" json:"created_at" yaml:"created_at"`
}

// ShortHash renders the hash the way the vault dashboard lists it, 0x7a2...f39e.
func (r Receipt) ShortHash() string {
	h := strings.TrimPrefix(r.Hash, "0x")
	if len(h) <= 7 {
		return "0x" + h
	}
	return "0x" + h[:3] + "..." + h[len(h)-4:]
}

type AgentStatus string

const (
	AgentActive AgentStatus = "Active"
	AgentIdle   AgentStatus = "Idle"
)

// Agent is a background worker listed on the vault dashboard.
type Agent struct {
	ID       string      `gorm:"primaryKey;size:64;not null" json:"id" yaml:"id"`
	Name     string      `gorm:"size:128;not null" json:"name" yaml:"name"`
	Type     string      `gorm:"size:32" json:"type" yaml:"type"`
	Status   AgentStatus `gorm:"size:16;not null" json:"status" yaml:"status"`
	Uptime   string      `gorm:"size:16" json:"uptime" yaml:"uptime"`
	Position int         `gorm:"not null;default:0" json:"-" yaml:"-"`
}
