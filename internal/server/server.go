package server

import (
	"context"
	"net/http"

	"crabbox/internal/config"
	"crabbox/internal/handler"
	"crabbox/internal/infra/metrics"
	infrarepo "crabbox/internal/infra/repository"
	mw "crabbox/internal/middleware"
	"crabbox/internal/repository"
	"crabbox/internal/usecase"
	"crabbox/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// サーバーの組み立てに必要なもの
type Deps struct {
	Config config.Config
	DB     *gorm.DB
	// nilならDBのテーブルに置く
	Nonces   repository.NonceStore
	Logger   *zap.Logger
	Registry *prometheus.Registry
}

type Server struct {
	echo    *echo.Echo
	guards  handler.Guards
	catalog *handler.CatalogHandler
	orders  *handler.OrderHandler
	seller  *handler.SellerHandler
	tokens  *handler.TokenHandler
	auth    *handler.AuthHandler
	metrics http.Handler
}

func NewServer(d Deps) *Server {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	nonces := d.Nonces
	if nonces == nil {
		nonces = infrarepo.NewNonceGormStore(d.DB)
	}
	cfg := d.Config

	//repository
	tx := infrarepo.NewTxManagerGorm(d.DB)
	accounts := infrarepo.NewAccountGormRepository(d.DB)
	giftBoxes := infrarepo.NewGiftBoxGormRepository(d.DB)

	//usecase
	access := usecase.NewAccessControl(cfg.Chain.OwnerAddress)
	business := metrics.NewBusiness(reg)
	catalogUC := usecase.NewCatalogUsecase(tx, giftBoxes, access, log)
	orderUC := usecase.NewOrderUsecase(tx, access, cfg.Chain.ServiceAddress, log, business)
	sellerUC := usecase.NewSellerUsecase(tx, access, cfg.Chain.ServiceAddress, log, business)
	tokenUC := usecase.NewTokenUsecase(tx, access, cfg.Chain.TokenFaucetEnabled, log)
	authUC := usecase.NewAuthUsecase(cfg.Auth, access, accounts, nonces, validator.NewAuthValidator(), log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(mw.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.FEURL},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			"X-Idempotency-Key",
		},
	}))
	e.Use(mw.NewHTTPMetrics(reg, log).Middleware())

	s := &Server{
		echo:    e,
		guards:  handler.NewGuards(cfg.Auth.JWTSecret, accounts),
		catalog: handler.NewCatalogHandler(catalogUC),
		orders:  handler.NewOrderHandler(orderUC),
		seller:  handler.NewSellerHandler(sellerUC),
		tokens:  handler.NewTokenHandler(tokenUC),
		auth:    handler.NewAuthHandler(authUC, access),
		metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}

	s.setupRoutes()
	return s
}

// テストではhttptestにそのまま渡す
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
