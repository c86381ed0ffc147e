package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/civicroom/memberdesk/internal/commands"
	"github.com/civicroom/memberdesk/internal/config"
	identitydomain "github.com/civicroom/memberdesk/internal/identity/domain"
	"github.com/civicroom/memberdesk/internal/push"
	"github.com/civicroom/memberdesk/internal/ratelimit"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config) *gin.Engine {
	return NewEngine(cfg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// Server carries the push channel surface: the command endpoint and the
// event stream it replies on.
type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	identityRepo identitydomain.Repository
	dispatcher   *commands.Dispatcher
	hub          *push.Hub
	limiter      *ratelimit.CommandLimiter
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	IdentityRepo identitydomain.Repository
	Dispatcher   *commands.Dispatcher
	Hub          *push.Hub
	Limiter      *ratelimit.CommandLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("server"),
		identityRepo: p.IdentityRepo,
		dispatcher:   p.Dispatcher,
		hub:          p.Hub,
		limiter:      p.Limiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1", s.AuthRequired())

	v1.POST("/commands", s.CommandRateLimit(), s.HandleCommand)
	v1.GET("/stream", s.StreamEvents)
}
