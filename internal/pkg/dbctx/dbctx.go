package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries the caller's context and, when inside a transaction, the
// transaction handle repos should write through.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// Detached keeps ctx's values but not its cancellation, for writes that must
// land after the request that triggered them has returned.
func Detached(ctx context.Context) Context {
	if ctx == nil {
		return Context{Ctx: context.Background()}
	}
	return Context{Ctx: context.WithoutCancel(ctx)}
}

// DB picks the transaction when one is set and falls back to base.
func (c Context) DB(base *gorm.DB) *gorm.DB {
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if c.Tx != nil {
		return c.Tx.WithContext(ctx)
	}
	return base.WithContext(ctx)
}
