package bootstrap

import (
	"context"
	"time"

	"github.com/go-arbor/arbor/internal/app/menu/logic"
	"github.com/go-arbor/arbor/internal/app/menu/menucache"
	"github.com/go-arbor/arbor/internal/app/menu/repo"
	"github.com/go-arbor/arbor/internal/router"
	"github.com/go-arbor/arbor/pkg/cache"
	"github.com/go-arbor/arbor/pkg/conf"
	"github.com/go-arbor/arbor/pkg/ctx"
	"github.com/go-arbor/arbor/pkg/database"
	arborhttp "github.com/go-arbor/arbor/pkg/http"
	"github.com/go-arbor/arbor/pkg/log"
)

// Config is the root TOML configuration.
type Config struct {
	Log      log.Conf
	Http     arborhttp.Http
	Database database.Database
	Redis    cache.Redis
	Menu     MenuConf
}

// MenuConf overrides the per-shape cache TTLs (seconds); zero keeps the
// default.
type MenuConf struct {
	TreeTTL   int `mapstructure:"treeTTL"`
	ListTTL   int `mapstructure:"listTTL"`
	ItemTTL   int `mapstructure:"itemTTL"`
	UserTTL   int `mapstructure:"userTTL"`
	SearchTTL int `mapstructure:"searchTTL"`
	StatsTTL  int `mapstructure:"statsTTL"`
}

func (m MenuConf) ttl() menucache.TTLConf {
	return menucache.TTLConf{
		Tree:   time.Duration(m.TreeTTL) * time.Second,
		List:   time.Duration(m.ListTTL) * time.Second,
		Item:   time.Duration(m.ItemTTL) * time.Second,
		User:   time.Duration(m.UserTTL) * time.Second,
		Search: time.Duration(m.SearchTTL) * time.Second,
		Stats:  time.Duration(m.StatsTTL) * time.Second,
	}
}

// Bootstrap loads configuration and wires the application together,
// returning the blocking shutdown hook of the HTTP server.
func Bootstrap(confDir string) (func(), error) {
	appConf := &Config{}
	if _, err := conf.LoadConfigFile(confDir, appConf); err != nil {
		return nil, err
	}

	if err := log.Init(&appConf.Log); err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(appConf.Database)
	if err != nil {
		return nil, err
	}

	// redis is optional: without it every read degrades to pass-through
	var cacheIns cache.ICache
	if redisClient, err := cache.NewRedis(appConf.Redis); err != nil {
		log.Warnw("cache store unavailable, running in pass-through mode", "error", err)
	} else {
		cacheIns = cache.NewRedisCache(redisClient)
	}

	appCtx := ctx.NewContext(context.Background(), db, cacheIns, log.GetLogger())

	menuRepo := repo.NewMenuRepo(appCtx)
	menuCache := menucache.NewMenuCache(cacheIns, appConf.Menu.ttl())
	menuLogic := logic.NewMenuLogic(menuRepo, menuCache)

	r := router.NewRouter(&appConf.Http, appCtx, menuLogic)
	shutdown := arborhttp.NewHttp(appConf.Http, r.Router())

	log.Infow("arbor started",
		"addr", appConf.Http.Host,
		"port", appConf.Http.Port,
	)
	return shutdown, nil
}
