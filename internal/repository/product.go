package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/Elite-tch/privacycart/internal/model"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProductNotFound = errors.New("product not found")

//go:embed seed/catalog.yaml
var catalogSeed []byte

type ProductRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	GetByType(ctx context.Context, productType model.ProductType) ([]*model.Product, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

type catalogFile struct {
	Products []model.Product `yaml:"products"`
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(data []byte) ([]model.Product, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Products))
	for i := range file.Products {
		p := &file.Products[i]
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %s", i, p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Type == "" {
			p.Type = model.ProductTypeMarket
		}
		p.Position = i
	}

	return file.Products, nil
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	products, err := ParseCatalog(catalogSeed)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&products).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) GetByType(ctx context.Context, productType model.ProductType) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Where("type = ?", productType).
		Order("position").
		Find(&products).
		Error

	if err != nil {
		return nil, err
	}

	return products, nil
}
