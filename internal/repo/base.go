package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/discope/discope-backend/pkg/errors"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Conn exposes the raw connection, used by WithTx implementations.
func (b Base) Conn() *gorm.DB {
	return b.db
}

// First loads a single row into dest and maps a missing row to UNKNOWN_OBJECT.
func (b Base) First(ctx context.Context, dest any, what string, query *gorm.DB) error {
	if query == nil {
		query = b.DB(ctx)
	}
	if err := query.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnknownObject, what+" not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+what)
	}
	return nil
}

// DeleteOrphans removes rows of model scoped by column = owner whose id is not in keep.
func (b Base) DeleteOrphans(ctx context.Context, model any, column string, owner uuid.UUID, keep []uuid.UUID) error {
	q := b.DB(ctx).Where(column+" = ?", owner)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	return q.Delete(model).Error
}
