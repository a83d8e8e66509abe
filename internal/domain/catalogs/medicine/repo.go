package medicine

import (
	"context"

	"dispensary/internal/core/id"
	"dispensary/internal/domain"
)

// Repository persists the medicine catalog. Also serves as the
// inventory.MedicineChecker via Exists.
type Repository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, medicineID id.ID) (*Medicine, error)
	GetByCode(ctx context.Context, code string) (*Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	List(ctx context.Context, filter domain.ListFilter) (*domain.ListResult[Medicine], error)

	// Exists reports whether a non-deleted medicine with the id exists.
	Exists(ctx context.Context, medicineID id.ID) (bool, error)

	// GetMany fetches medicines by id in one roundtrip, keyed by id.
	// Missing ids are simply absent from the result.
	GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*Medicine, error)
}
