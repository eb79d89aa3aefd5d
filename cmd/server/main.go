package main

import (
	"flag"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/keyword_scope/internal/config"
	"github.com/iWorld-y/keyword_scope/internal/server"
	"github.com/iWorld-y/keyword_scope/internal/service"
	"github.com/iWorld-y/keyword_scope/pkg/analysis"
	"github.com/iWorld-y/keyword_scope/pkg/backend"
	"github.com/iWorld-y/keyword_scope/pkg/logger"
	"github.com/iWorld-y/keyword_scope/pkg/search"
	"github.com/iWorld-y/keyword_scope/pkg/search/factory"
	"github.com/iWorld-y/keyword_scope/pkg/session"
	"github.com/iWorld-y/keyword_scope/pkg/store"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 是服务的名称
	Name string = "keyscope"
	// Version 是服务的版本号
	Version string
	// flagconf 是配置文件的路径命令行参数
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		panic(err)
	}

	// 2. 初始化分析引擎侧日志
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		panic(err)
	}

	// 服务侧日志，包含时间戳、调用者信息、服务ID等上下文
	klogger := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)

	// 3. 初始化搜索提供方（失败时降级为纯模型分析，不做检索增强）
	var searcher search.Searcher
	if sc, err := factory.NewSearcher(search.Config{
		Provider: cfg.Search.Provider,
		Tavily:   search.TavilyConfig{APIKey: cfg.Search.Tavily.APIKey},
		SearXNG: search.SearXNGConfig{
			BaseURL: cfg.Search.SearXNG.BaseURL,
			Timeout: cfg.Search.SearXNG.Timeout,
		},
	}); err != nil {
		logger.Log.Warnf("搜索提供方不可用，检索增强已关闭: %v", err)
	} else {
		searcher = sc
	}

	// 4. 初始化模型后端与分析客户端
	gen := backend.NewClient(backend.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		QPS:     cfg.Concurrency.QPS,
		RPM:     cfg.Concurrency.RPM,
	}, searcher)
	analyzer := analysis.NewClient(gen, cfg.Credential())

	// 5. 初始化偏好存储：配置了数据库就用 PostgreSQL，否则退回内存
	var prefs store.Store = store.NewMemory()
	if cfg.DB.Host != "" {
		pg, err := store.NewPostgres(store.PostgresConfig{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			Name:     cfg.DB.Name,
		})
		if err != nil {
			logger.Log.Errorf("无法连接数据库，偏好将不跨重启保留: %v", err)
		} else {
			defer pg.Close()
			prefs = pg
			logger.Log.Info("已成功连接到数据库")
		}
	}

	// 6. 组装会话控制器与 HTTP 服务
	ctrl := session.NewController(analyzer, prefs)
	svc := service.NewKeyscopeService(ctrl, klogger)
	httpSrv := server.NewHTTPServer(&cfg.Server.HTTP, svc, klogger)

	app := kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Logger(klogger),
		kratos.Server(httpSrv),
	)

	if err := app.Run(); err != nil {
		panic(err)
	}

	// 等待在途的深挖请求落地后再退出
	ctrl.Wait()
}
