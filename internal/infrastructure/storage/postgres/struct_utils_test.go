package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dispensary/internal/core/entity"
	"dispensary/internal/core/id"
)

type MockCatalog struct {
	entity.Catalog
	GenericName *string `db:"generic_name" json:"genericName,omitempty"`
	Secret      string  `db:"-" json:"-"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[MockCatalog]()

	expectedCols := []string{
		"id", "deletion_mark", "version", "code", "name", "generic_name",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
	assert.NotContains(t, cols, "-")
}

func TestStructToMap(t *testing.T) {
	generic := "Paracetamol"
	cat := MockCatalog{
		Catalog: entity.Catalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				DeletionMark: true,
				Version:      5,
			},
			Code: "MED-001",
			Name: "Paracetamol 500mg",
		},
		GenericName: &generic,
		Secret:      "hidden",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "MED-001", m["code"])
	assert.Equal(t, "Paracetamol 500mg", m["name"])
	assert.Equal(t, &generic, m["generic_name"])
	assert.NotContains(t, m, "-")
}

func TestStructToMap_Pointer(t *testing.T) {
	cat := &MockCatalog{
		Catalog: entity.Catalog{
			BaseEntity: entity.BaseEntity{ID: id.New(), Version: 1},
			Code:       "MED-002",
			Name:       "Cetirizine 10mg",
		},
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, "MED-002", m["code"])
	assert.Nil(t, m["generic_name"].(*string))
}
