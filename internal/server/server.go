package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	authdomain "github.com/smallbiznis/comanda/internal/auth/domain"
	"github.com/smallbiznis/comanda/internal/config"
	"github.com/smallbiznis/comanda/internal/lock"
	menudomain "github.com/smallbiznis/comanda/internal/menu/domain"
	paymentdomain "github.com/smallbiznis/comanda/internal/payment/domain"
	"github.com/smallbiznis/comanda/internal/providers/receipt"
	tabdomain "github.com/smallbiznis/comanda/internal/tab/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	AuthSvc    authdomain.Service
	MenuSvc    menudomain.Service
	TabStore   tabdomain.Store
	Processor  paymentdomain.Processor
	Receipts   receipt.Provider
	Locker     *lock.Locker
}

// Server is the tenant-scoped request boundary. It holds no per-request
// state; any number of instances can serve the same terminals concurrently.
type Server struct {
	cfg       config.Config
	log       *zap.Logger
	authSvc   authdomain.Service
	menuSvc   menudomain.Service
	tabStore  tabdomain.Store
	processor paymentdomain.Processor
	receipts  receipt.Provider
	locker    *lock.Locker
	metrics   *httpMetrics
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:       p.Cfg,
		log:       p.Log.Named("server"),
		authSvc:   p.AuthSvc,
		menuSvc:   p.MenuSvc,
		tabStore:  p.TabStore,
		processor: p.Processor,
		receipts:  p.Receipts,
		locker:    p.Locker,
		metrics:   newHTTPMetrics(),
	}
}

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	return engine
}

func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.Use(s.metrics.Middleware())
	engine.Use(ErrorHandlingMiddleware())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.POST("/token/", s.Token)
	engine.POST("/token/refresh/", s.TokenRefresh)

	api := engine.Group("/api", s.AuthRequired())
	{
		api.GET("/user-profile", s.UserProfile)
		api.GET("/menu-items", s.ListMenuItems)

		api.GET("/cards", s.ListCards)
		api.POST("/cards", s.OpenCard)
		api.GET("/cards/:id", s.GetCard)
		api.POST("/cards/:id/items", s.AddCardItem)
		api.DELETE("/cards/:id/items/:item_id", s.DeleteCardItem)
		api.PATCH("/cards/:id/items/:item_id/ready", s.SetCardItemReady)

		api.POST("/card-payments", s.CreateCardPayment)
		api.GET("/card-payments/:card_id/receipt", s.CardPaymentReceipt)
	}
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, engine *gin.Engine, s *Server) {
	s.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)
