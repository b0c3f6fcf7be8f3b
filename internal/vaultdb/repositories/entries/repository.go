package entries

import (
	"context"

	"github.com/dmitrijs2005/vaultport/internal/vaultdb/models"
)

type Repository interface {
	ExistsTitle(ctx context.Context, groupID string, titleMAC []byte) (bool, error)
	Insert(ctx context.Context, e *models.Entry) error
	UpdateDetails(ctx context.Context, e *models.Entry) error
	GetByGroup(ctx context.Context, groupID string) ([]models.Entry, error)
}
