package specification_test

import (
	"testing"

	"booking-order-be/internal/model"
	"booking-order-be/internal/repository/specification"
	"booking-order-be/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestApplyAll(t *testing.T) {
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []model.Order
		return specification.ApplyAll(tx.Model(&model.Order{}),
			specification.ByOrderNo{OrderNo: "BO-1"},
			nil,
			specification.OrderBy{Field: "created_at", Desc: true},
		).Find(&rows)
	})

	assert.Contains(t, sql, "order_no = ")
	assert.Contains(t, sql, "BO-1")
	assert.Contains(t, sql, "ORDER BY created_at DESC")
}

func TestApplyAll_NoSpecs(t *testing.T) {
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []model.Order
		return specification.ApplyAll(tx.Model(&model.Order{})).Find(&rows)
	})

	assert.NotContains(t, sql, "WHERE")
}
