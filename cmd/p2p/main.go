// P2PExchange 主程序
// 功能：点对点换汇挂单市场，包括买卖挂单、议价、汇率换算、资金配置与凭证上传
// 架构：基于 DDD + gin + GORM + Redis + Kafka
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	accountmysql "github.com/wyfcoding/p2pexchange/internal/account/infrastructure/persistence/mysql"
	"github.com/wyfcoding/p2pexchange/internal/auth/infrastructure/token"
	authhttp "github.com/wyfcoding/p2pexchange/internal/auth/interfaces/http"
	buyerapp "github.com/wyfcoding/p2pexchange/internal/buyer/application"
	buyerdomain "github.com/wyfcoding/p2pexchange/internal/buyer/domain"
	buyermysql "github.com/wyfcoding/p2pexchange/internal/buyer/infrastructure/persistence/mysql"
	buyerredis "github.com/wyfcoding/p2pexchange/internal/buyer/infrastructure/persistence/redis"
	buyerhttp "github.com/wyfcoding/p2pexchange/internal/buyer/interfaces/http"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	fileapp "github.com/wyfcoding/p2pexchange/internal/filestore/application"
	filemysql "github.com/wyfcoding/p2pexchange/internal/filestore/infrastructure/persistence/mysql"
	"github.com/wyfcoding/p2pexchange/internal/filestore/infrastructure/s3"
	filehttp "github.com/wyfcoding/p2pexchange/internal/filestore/interfaces/http"
	negotiationmysql "github.com/wyfcoding/p2pexchange/internal/negotiation/infrastructure/persistence/mysql"
	notification "github.com/wyfcoding/p2pexchange/internal/notification/domain"
	"github.com/wyfcoding/p2pexchange/internal/notification/infrastructure/sender"
	portfolioapp "github.com/wyfcoding/p2pexchange/internal/portfolio/application"
	portfoliomysql "github.com/wyfcoding/p2pexchange/internal/portfolio/infrastructure/persistence/mysql"
	portfoliohttp "github.com/wyfcoding/p2pexchange/internal/portfolio/interfaces/http"
	sellerapp "github.com/wyfcoding/p2pexchange/internal/seller/application"
	sellerdomain "github.com/wyfcoding/p2pexchange/internal/seller/domain"
	sellermysql "github.com/wyfcoding/p2pexchange/internal/seller/infrastructure/persistence/mysql"
	sellerredis "github.com/wyfcoding/p2pexchange/internal/seller/infrastructure/persistence/redis"
	sellerhttp "github.com/wyfcoding/p2pexchange/internal/seller/interfaces/http"
	trademysql "github.com/wyfcoding/p2pexchange/internal/trade/infrastructure/persistence/mysql"
	usermysql "github.com/wyfcoding/p2pexchange/internal/user/infrastructure/persistence/mysql"
	"github.com/wyfcoding/p2pexchange/pkg/cache"
	"github.com/wyfcoding/p2pexchange/pkg/config"
	"github.com/wyfcoding/p2pexchange/pkg/db"
	"github.com/wyfcoding/p2pexchange/pkg/logger"
	"github.com/wyfcoding/p2pexchange/pkg/metrics"
	"github.com/wyfcoding/p2pexchange/pkg/middleware"
	"github.com/wyfcoding/p2pexchange/pkg/mq"
	"github.com/wyfcoding/p2pexchange/pkg/ratelimit"
	"github.com/wyfcoding/p2pexchange/pkg/trace"
	"github.com/wyfcoding/p2pexchange/pkg/validation"
	pkgconfig "github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/idgen"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// handlers HTTP 层依赖
type handlers struct {
	verifier  *token.JWTVerifier
	limiter   ratelimit.RateLimiter
	metrics   *metrics.Metrics
	seller    *sellerhttp.SellOrderHandler
	buyer     *buyerhttp.BuyOrderHandler
	portfolio *portfoliohttp.PortfolioHandler
	files     *filehttp.FileHandler
}

func main() {
	// 1. 加载配置
	configPath := config.GetEnv("APP_CONFIG", "configs/p2p/config.toml")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	loggerCfg := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}
	if err := logger.Init(loggerCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting P2PExchange",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	if err := idgen.Init(pkgconfig.SnowflakeConfig{
		Type:      cfg.IDGen.Type,
		StartTime: cfg.IDGen.StartTime,
		MachineID: cfg.IDGen.MachineID,
	}); err != nil {
		logger.Fatal(ctx, "Failed to initialize id generator", "error", err)
	}

	// 3. 初始化追踪
	if cfg.Tracing.Enabled {
		shutdown, err := trace.InitTracer(cfg.ServiceName, cfg.Tracing.CollectorEndpoint, cfg.Tracing.SamplingRate)
		if err != nil {
			logger.Error(ctx, "Failed to initialize tracer", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error(ctx, "Failed to shutdown tracer", "error", err)
				}
			}()
			logger.Info(ctx, "Tracer initialized", "endpoint", cfg.Tracing.CollectorEndpoint)
		}
	}

	// 4. 初始化数据库
	dbCfg := db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	}
	database, err := db.Init(dbCfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(
			&usermysql.UserModel{},
			&accountmysql.WalletModel{},
			&negotiationmysql.NegotiationModel{},
			&trademysql.TradeModel{},
			&sellermysql.SellOrderModel{},
			&buyermysql.BuyOrderModel{},
			&portfoliomysql.PortfolioModel{},
			&filemysql.FileObjectModel{},
		); err != nil {
			logger.Fatal(ctx, "Failed to migrate database", "error", err)
		}
		logger.Info(ctx, "Database schema migrated")
	}

	// 5. 初始化 Redis，不可用时不使用缓存与限流
	var (
		rateLimiter ratelimit.RateLimiter
		sellCache   sellerdomain.SellOrderReadRepository
		buyCache    buyerdomain.BuyOrderReadRepository
	)
	redisCfg := cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}
	redisCache, err := cache.New(redisCfg)
	if err != nil {
		logger.Warn(ctx, "Redis unavailable, running without cache and rate limiting", "error", err)
	} else {
		defer redisCache.Close()
		ttl := time.Duration(cfg.P2P.OrderCacheTTL) * time.Second
		rateLimiter = ratelimit.NewRedisRateLimiter(redisCache.GetClient())
		sellCache = sellerredis.NewSellOrderRedisRepository(redisCache, ttl)
		buyCache = buyerredis.NewBuyOrderRedisRepository(redisCache, ttl)
	}

	// 6. 初始化推送
	var notifier notification.Notifier = sender.NewLogSender()
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to initialize Kafka producer", "error", err)
		}
		defer producer.Close()
		notifier = sender.NewKafkaSender(producer, cfg.Kafka.NotificationTopic)
	}

	// 7. 初始化指标
	metricsInstance := metrics.New(cfg.ServiceName)
	if cfg.Metrics.Enabled {
		if err := metricsInstance.Register(); err != nil {
			logger.Fatal(ctx, "Failed to register metrics", "error", err)
		}
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "Failed to start metrics HTTP server", "error", err)
		}
	}

	// 8. 初始化仓储
	gdb := database.DB
	userRepo := usermysql.NewUserRepository(gdb)
	walletRepo := accountmysql.NewWalletRepository(gdb)
	negotiationRepo := negotiationmysql.NewNegotiationRepository(gdb)
	tradeRepo := trademysql.NewTradeRepository(gdb)
	sellRepo := sellermysql.NewSellOrderRepository(gdb)
	buyRepo := buyermysql.NewBuyOrderRepository(gdb)
	portfolioRepo := portfoliomysql.NewPortfolioRepository(gdb)
	fileRepo := filemysql.NewFileRepository(gdb)

	blobStore, err := s3.NewMinioStore(cfg.Storage)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize object store", "error", err)
	}

	// 9. 初始化应用服务
	validator := exchange.NewValidator(userRepo, walletRepo, negotiationRepo, tradeRepo, cfg.P2P.BuyerBalanceCheck)
	resolver := exchange.NewRateResolver(negotiationRepo)

	sellCmd := sellerapp.NewSellOrderCommandService(sellerapp.CommandDeps{
		Repo:         sellRepo,
		ReadRepo:     sellCache,
		Negotiations: negotiationRepo,
		Users:        userRepo,
		Validator:    validator,
		Resolver:     resolver,
		Tx:           database,
		Notifier:     notifier,
		Metrics:      metricsInstance,
	})
	sellQuery := sellerapp.NewSellOrderQueryService(sellRepo, sellCache)
	buyCmd := buyerapp.NewBuyOrderCommandService(buyRepo, buyCache, walletRepo, validator, database, metricsInstance)
	buyQuery := buyerapp.NewBuyOrderQueryService(buyRepo, buyCache)
	portfolioSvc := portfolioapp.NewPortfolioService(portfolioRepo)
	fileSvc := fileapp.NewFileService(blobStore, fileRepo, int64(cfg.Storage.MaxUploadMB)<<20, metricsInstance)

	// 10. 创建 HTTP 服务器
	if err := validation.RegisterOneOfFold("currency", exchange.CAD.String(), exchange.NGN.String(), exchange.USD.String()); err != nil {
		logger.Fatal(ctx, "Failed to register validators", "error", err)
	}
	httpServer := createHTTPServer(cfg, handlers{
		verifier:  token.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		limiter:   rateLimiter,
		metrics:   metricsInstance,
		seller:    sellerhttp.NewSellOrderHandler(sellCmd, sellQuery),
		buyer:     buyerhttp.NewBuyOrderHandler(buyCmd, buyQuery),
		portfolio: portfoliohttp.NewPortfolioHandler(portfolioSvc),
		files:     filehttp.NewFileHandler(fileSvc),
	})

	// 11. 创建 gRPC 服务器（健康检查与反射）
	var grpcServer *grpc.Server
	if cfg.GRPC.Enabled {
		grpcServer = createGRPCServer(cfg)
	}

	// 12. 启动 HTTP 服务器
	go func() {
		logger.Info(ctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	// 13. 启动 gRPC 服务器
	if grpcServer != nil {
		go func() {
			addr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
			listener, err := net.Listen("tcp", addr)
			if err != nil {
				logger.Fatal(ctx, "Failed to listen on gRPC address", "error", err)
			}
			logger.Info(ctx, "Starting gRPC server", "addr", addr)
			if err := grpcServer.Serve(listener); err != nil {
				logger.Fatal(ctx, "gRPC server error", "error", err)
			}
		}()
	}

	// 14. 优雅关停
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "Shutting down P2PExchange")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown error", "error", err)
	}

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	logger.Info(ctx, "P2PExchange stopped")
}

// createHTTPServer 创建 HTTP 服务器
func createHTTPServer(cfg *config.Config, h handlers) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 添加中间件
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinMetricsMiddleware(h.metrics))

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	// 限流在认证之后，已登录用户按用户 ID 计数
	limit := middleware.RateLimitMiddleware(h.limiter, cfg.RateLimit)
	v1 := router.Group("/api/v1")
	protected := v1.Group("", authhttp.Required(h.verifier), limit)
	optional := v1.Group("", authhttp.Optional(h.verifier), limit)

	// 注册路由
	h.seller.RegisterRoutes(protected, optional)
	h.buyer.RegisterRoutes(protected, optional)
	h.portfolio.RegisterRoutes(protected)
	h.files.RegisterRoutes(protected)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}

// createGRPCServer 创建 gRPC 服务器
func createGRPCServer(cfg *config.Config) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			middleware.GRPCLoggingInterceptor(),
			middleware.GRPCRecoveryInterceptor(),
		),
		grpc.MaxConcurrentStreams(uint32(cfg.GRPC.MaxConcurrentStreams)),
	}

	server := grpc.NewServer(opts...)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(cfg.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	return server
}
