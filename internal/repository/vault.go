package repository

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/Elite-tch/privacycart/internal/model"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed seed/vault.yaml
var vaultSeed []byte

type vaultFile struct {
	Agents  []model.Agent   `yaml:"agents"`
	History []model.Receipt `yaml:"history"`
}

// ParseVaultSeed decodes the dashboard agents and the shared receipt history.
func ParseVaultSeed(data []byte) ([]model.Agent, []model.Receipt, error) {
	var file vaultFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("decode vault seed: %w", err)
	}

	for i := range file.Agents {
		a := &file.Agents[i]
		if a.ID == "" || a.Name == "" {
			return nil, nil, fmt.Errorf("agent entry %d: missing id or name", i)
		}
		switch a.Status {
		case model.AgentActive, model.AgentIdle:
		default:
			return nil, nil, fmt.Errorf("agent %s: invalid status %q", a.ID, a.Status)
		}
		a.Position = i
	}

	for i := range file.History {
		r := &file.History[i]
		if r.ID == "" || r.Hash == "" {
			return nil, nil, fmt.Errorf("history entry %d: missing id or hash", i)
		}
		r.SessionID = model.SeedSessionID
		r.ItemCount = len(r.Products)
		if r.Status == "" {
			r.Status = model.ReceiptSecured
		}
	}

	return file.Agents, file.History, nil
}

type AgentRepository interface {
	Seed(ctx context.Context) error
	List(ctx context.Context) ([]*model.Agent, error)
}

type agentRepoImpl struct {
	db *gorm.DB
}

func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &agentRepoImpl{
		db: db,
	}
}

func (r *agentRepoImpl) Seed(ctx context.Context) error {
	agents, _, err := ParseVaultSeed(vaultSeed)
	if err != nil {
		return err
	}
	if len(agents) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&agents).Error
}

func (r *agentRepoImpl) List(ctx context.Context) ([]*model.Agent, error) {
	var agents []*model.Agent
	err := r.db.WithContext(ctx).
		Order("position").
		Find(&agents).Error

	if err != nil {
		return nil, err
	}

	return agents, nil
}
