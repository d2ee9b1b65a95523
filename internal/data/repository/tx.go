package repository

import (
	"context"
	"fmt"

	"stay-nest/internal/data/entity"
	"stay-nest/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TxManager runs work inside a database transaction.
type TxManager interface {
	// WithPropertyLock opens a transaction, row-locks the property and hands
	// fn a Repository bound to that transaction. property is nil when it
	// does not exist. The transaction commits only if fn returns nil.
	WithPropertyLock(ctx context.Context, propertyID uuid.UUID, fn func(tx *Repository, property *entity.Property) error) error
}

type txManager struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTxManager(db database.PgxIface, log *zap.Logger) TxManager {
	return &txManager{
		db:  db,
		log: log.With(zap.String("repository", "tx")),
	}
}

func (m *txManager) WithPropertyLock(ctx context.Context, propertyID uuid.UUID, fn func(tx *Repository, property *entity.Property) error) (err error) {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		m.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				m.log.Warn("Rollback failed", zap.Error(rbErr), zap.String("property_id", propertyID.String()))
			}
		}
	}()

	repo := newQueriers(tx, m.log)

	property, err := repo.Property.FindByIDForUpdate(ctx, propertyID)
	if err != nil {
		return err
	}

	if err = fn(repo, property); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		m.log.Error("Failed to commit transaction", zap.Error(err), zap.String("property_id", propertyID.String()))
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
