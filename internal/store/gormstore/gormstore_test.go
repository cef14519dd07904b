package gormstore

import (
	"errors"
	"fmt"
	"testing"

	"civic-project-system/internal/model"
	"civic-project-system/internal/store"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	require.NoError(t, translate(nil))
	require.ErrorIs(t, translate(gorm.ErrRecordNotFound), store.ErrNotFound)
	require.ErrorIs(t, translate(fmt.Errorf("first: %w", gorm.ErrRecordNotFound)), store.ErrNotFound)

	dup := &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.c' for key 'idx_users_email'"}
	err := translate(dup)
	require.ErrorIs(t, err, store.ErrDuplicate)
	require.Contains(t, err.Error(), "Duplicate entry")

	require.ErrorIs(t, translate(fmt.Errorf("create: %w", dup)), store.ErrDuplicate)
	require.ErrorIs(t, translate(gorm.ErrDuplicatedKey), store.ErrDuplicate)

	// 其他 MySQL 错误原样返回
	fk := &mysqldriver.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"}
	err = translate(fk)
	require.False(t, errors.Is(err, store.ErrDuplicate))
	require.Same(t, fk, err)

	other := errors.New("connection refused")
	require.Equal(t, other, translate(other))
}

func TestColumns(t *testing.T) {
	require.Equal(t, "comment_id", targetColumn(model.TargetComment))
	require.Equal(t, "project_id", targetColumn(model.TargetProject))

	require.Equal(t, "progress_history_id", ownerColumn(model.OwnerProgress))
	require.Equal(t, "report_id", ownerColumn(model.OwnerReport))
	require.Equal(t, "project_id", ownerColumn(model.OwnerProject))

	require.Equal(t, "created_at DESC, id DESC", order(true))
	require.Equal(t, "created_at ASC, id ASC", order(false))
}

// dryRun 不连接数据库，只生成 SQL
func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "civic:civic@tcp(127.0.0.1:3306)/civic?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestPaginate(t *testing.T) {
	db := dryRun(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []model.User
		return paginate(tx.Model(&model.User{}), store.Page{Page: 3, Limit: 20}).Find(&rows)
	})
	require.Contains(t, sql, "LIMIT 20 OFFSET 40")

	sql = db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []model.User
		return paginate(tx.Model(&model.User{}), store.Page{}).Find(&rows)
	})
	require.NotContains(t, sql, "LIMIT")
}
