package ctx

import (
	"context"

	"github.com/go-arbor/arbor/pkg/cache"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Context carries the shared infrastructure handles (relational store,
// cache store, logger) injected into repos and handlers.
type Context struct {
	MySQLIns *gorm.DB
	CacheIns cache.ICache
	Ctx      context.Context
	Log      *zap.SugaredLogger
}

func NewContext(ctx context.Context, mysql *gorm.DB, cacheIns cache.ICache, log *zap.SugaredLogger) *Context {
	return &Context{
		MySQLIns: mysql,
		CacheIns: cacheIns,
		Ctx:      ctx,
		Log:      log,
	}
}

func (c *Context) GetCtx() context.Context {
	return c.Ctx
}

func (c *Context) GetDB() *gorm.DB {
	return c.MySQLIns
}

func (c *Context) SetDB(db *gorm.DB) {
	c.MySQLIns = db
}

func (c *Context) GetCache() cache.ICache {
	return c.CacheIns
}

func (c *Context) SetCache(cacheIns cache.ICache) {
	c.CacheIns = cacheIns
}
