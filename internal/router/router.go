package router

import (
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/go-arbor/arbor/internal/app/menu/logic"
	"github.com/go-arbor/arbor/pkg/ctx"
	arborhttp "github.com/go-arbor/arbor/pkg/http"
	"github.com/go-arbor/arbor/pkg/httpx"
	"github.com/go-arbor/arbor/pkg/httpx/interceptor"
	"github.com/go-arbor/arbor/pkg/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	Http      *arborhttp.Http
	Ctx       *ctx.Context
	menuLogic *logic.MenuLogic
}

func NewRouter(cfg *arborhttp.Http, c *ctx.Context, menuLogic *logic.MenuLogic) *Router {
	return &Router{
		Http:      cfg,
		Ctx:       c,
		menuLogic: menuLogic,
	}
}

func (ar *Router) Router() *gin.Engine {

	gin.SetMode(ar.Http.Mode)

	r := gin.New()

	// panic recover
	r.Use(interceptor.ExceptionInterceptor)

	if ar.Http.AccessLog {
		r.Use(gin.LoggerWithFormatter(httpx.AccessLogFormat))
	}

	if ar.Http.PProf {
		pprof.Register(r, "/debug/pprof")
	}

	if ar.Http.ExposeMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/health", ar.health)

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, version.GetVersion())
	})

	api := r.Group(ar.Http.ContextPath)
	{
		ar.menuRoutes(api)
	}

	return r
}

// health reports db liveness as hard and cache liveness as soft: the system
// runs degraded without the cache store.
func (ar *Router) health(c *gin.Context) {
	dbOK := false
	if db := ar.Ctx.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err == nil {
			dbOK = sqlDB.PingContext(c.Request.Context()) == nil
		}
	}
	cacheOK := false
	if ar.Ctx.GetCache() != nil {
		cacheOK = ar.Ctx.GetCache().Ping(c.Request.Context()) == nil
	}

	status := http.StatusOK
	state := "ok"
	if !dbOK {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	} else if !cacheOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "db": dbOK, "cache": cacheOK})
}
