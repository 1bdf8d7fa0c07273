package database

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/retailadmin/internal/models"
	"github.com/example/retailadmin/internal/services"
)

// dryRunDB builds statements without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=retail dbname=retail sslmode=disable",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestVersionedUpdateIsConditional(t *testing.T) {
	db := dryRunDB(t)
	product := &models.Product{
		BaseModel:  models.BaseModel{ID: uuid.New()},
		Name:       "Linen Shirt",
		Variations: []models.Variation{{SKU: "LS-M-W", Size: "M", Color: "white", Stock: 4}},
		Version:    4,
	}

	res := versionedUpdate(db, product, 3)
	require.NoError(t, res.Error)

	sql := res.Statement.SQL.String()
	require.True(t, strings.HasPrefix(sql, `UPDATE "products" SET `), sql)
	set, where, ok := strings.Cut(sql, " WHERE ")
	require.True(t, ok, sql)

	assert.Contains(t, where, "version = $")
	assert.Contains(t, where, `"id" = $`)
	assert.Contains(t, set, `"version"=$`)
	assert.Contains(t, set, `"variations"=$`)
	assert.NotContains(t, set, `"created_at"`)
	assert.NotContains(t, set, `"id"=`)
	assert.Contains(t, res.Statement.Vars, int64(3))
	assert.Contains(t, res.Statement.Vars, int64(4))
}

func TestPutWithoutMatchingRowIsConflict(t *testing.T) {
	tx := &gormTx{db: dryRunDB(t)}

	product := &models.Product{BaseModel: models.BaseModel{ID: uuid.New()}, Name: "Linen Shirt", Version: 2}
	assert.ErrorIs(t, tx.PutProduct(product), services.ErrConflict)
	assert.EqualValues(t, 2, product.Version)

	customer := &models.Customer{BaseModel: models.BaseModel{ID: uuid.New()}, Name: "Aye Aye", Version: 1}
	assert.ErrorIs(t, tx.PutCustomer(customer), services.ErrConflict)
	assert.EqualValues(t, 1, customer.Version)
}
