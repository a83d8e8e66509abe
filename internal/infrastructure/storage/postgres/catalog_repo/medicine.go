package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"dispensary/internal/core/id"
	"dispensary/internal/domain/catalogs/medicine"
	"dispensary/internal/infrastructure/storage/postgres"
)

const medicinesTable = "cat_medicines"

// MedicineRepo implements medicine.Repository. It also satisfies
// inventory.MedicineChecker through the embedded Exists.
type MedicineRepo struct {
	*BaseCatalogRepo[medicine.Medicine]
}

func NewMedicineRepo(txManager *postgres.TxManager) *MedicineRepo {
	return &MedicineRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[medicine.Medicine](txManager, medicinesTable),
	}
}

func (r *MedicineRepo) Create(ctx context.Context, m *medicine.Medicine) error {
	return r.BaseCatalogRepo.Create(ctx, *m)
}

func (r *MedicineRepo) Update(ctx context.Context, m *medicine.Medicine) error {
	if err := r.BaseCatalogRepo.Update(ctx, *m); err != nil {
		return err
	}
	m.Version++
	return nil
}

// GetMany fetches medicines by id in one roundtrip, keyed by id.
func (r *MedicineRepo) GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*medicine.Medicine, error) {
	if len(ids) == 0 {
		return map[id.ID]*medicine.Medicine{}, nil
	}

	q := r.Builder().
		Select(postgres.ExtractDBColumns[medicine.Medicine]()...).
		From(medicinesTable).
		Where(squirrel.Eq{"id": ids})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var meds []medicine.Medicine
	if err := pgxscan.Select(ctx, r.Querier(ctx), &meds, sql, args...); err != nil {
		return nil, fmt.Errorf("select medicines: %w", err)
	}

	out := make(map[id.ID]*medicine.Medicine, len(meds))
	for i := range meds {
		out[meds[i].ID] = &meds[i]
	}
	return out, nil
}
