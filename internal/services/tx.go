package services

import (
	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
)

// inTx runs fn inside the caller's transaction when there is one, and in
// a fresh transaction otherwise.
func inTx(runner db.TxRunner, dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return runner.InTx(dbc.Ctx, fn)
}
