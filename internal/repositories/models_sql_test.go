package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"transroute/internal/models"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=transroute dbname=transroute sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

// Inactive rows must carry their flag into the INSERT instead of leaving
// the column to a database default.
func TestInsertKeepsFalseFlags(t *testing.T) {
	db := dryRunDB(t)

	tests := []struct {
		name   string
		model  interface{}
		column string
	}{
		{"route", &models.Route{CompanyID: 1, Name: "Taxco - Iguala", IsActive: false}, `"is_active"`},
		{"stop", &models.Stop{CompanyID: 1, City: "Taxco", State: "Guerrero", Name: "Centro", IsActive: false}, `"is_active"`},
		{"template", &models.RouteTemplate{RouteID: 1, IsActive: false}, `"is_active"`},
		{"company", &models.Company{Name: "Estrella", IsActive: false}, `"is_active"`},
		{"vehicle", &models.Vehicle{CompanyID: 1, InService: false}, `"in_service"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB { return tx.Create(tt.model) })

			assert.Contains(t, sql, tt.column)
			assert.Contains(t, sql, "false")
		})
	}
}

func TestStopIdentityIndexIgnoresDeleted(t *testing.T) {
	db := dryRunDB(t)
	stmt := &gorm.Statement{DB: db}
	require.NoError(t, stmt.Parse(&models.Stop{}))

	idx := stmt.Schema.LookIndex("idx_stop_identity")
	require.NotNil(t, idx)
	assert.Equal(t, "UNIQUE", idx.Class)
	assert.Equal(t, "deleted_at IS NULL", idx.Where)
	assert.Len(t, idx.Fields, 4)
}
