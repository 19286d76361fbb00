package db

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/domain"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
)

// TxRunner is the transaction boundary used by services. Everything that
// must commit together runs inside one InTx call.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domain.NewError(domain.CodeInternal, "db.tx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
