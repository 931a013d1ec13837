package repository

import (
	"context"

	"github.com/jhoicas/Boutique-api/internal/domain/entity"
)

// PartyRepository clientes, partenaires y proveedores.
type PartyRepository interface {
	Create(ctx context.Context, p *entity.Party) error
	GetByID(ctx context.Context, id int64) (*entity.Party, error)
	List(ctx context.Context, f PartyFilter, p Page) ([]*entity.Party, int64, error)
}
