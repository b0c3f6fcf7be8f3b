package groups

import (
	"context"

	"github.com/dmitrijs2005/vaultport/internal/vaultdb/models"
)

type Repository interface {
	Create(ctx context.Context, g *models.Group) error
	GetAll(ctx context.Context) ([]models.Group, error)
}
