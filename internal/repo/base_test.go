package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

type row struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID uuid.UUID `gorm:"column:owner_id;type:uuid"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	require.NoError(t, conn.AutoMigrate(&row{}))
	return conn
}

func TestNewBaseStoresConnection(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	if base.Conn() != db {
		t.Fatalf("expected base db to match provided connection")
	}
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)

	if withCtx == nil {
		t.Fatalf("expected non-nil DB when context provided")
	}
	if withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through, got %v", withCtx.Statement.Context)
	}

	withoutCtx := base.DB(nil)
	if withoutCtx != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestFirstMapsNotFound(t *testing.T) {
	base := NewBase(newTestDB(t))
	var r row
	err := base.First(context.Background(), &r, "row", base.DB(context.Background()).Where("id = ?", uuid.New()))
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeUnknownObject, ""))
}

func TestDeleteOrphans(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)
	ctx := context.Background()
	owner := uuid.New()
	keep := row{ID: uuid.New(), OwnerID: owner}
	drop := row{ID: uuid.New(), OwnerID: owner}
	other := row{ID: uuid.New(), OwnerID: uuid.New()}
	require.NoError(t, db.Create([]row{keep, drop, other}).Error)

	require.NoError(t, base.DeleteOrphans(ctx, &row{}, "owner_id", owner, []uuid.UUID{keep.ID}))
	var count int64
	require.NoError(t, db.Model(&row{}).Count(&count).Error)
	require.EqualValues(t, 2, count)

	require.NoError(t, base.DeleteOrphans(ctx, &row{}, "owner_id", owner, nil))
	require.NoError(t, db.Model(&row{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
