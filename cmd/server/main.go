package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	httpctrl "vfw-service/internal/controllers/http"
	"vfw-service/internal/infra"
	"vfw-service/internal/infra/mailer"
	mmysql "vfw-service/internal/infra/mysql"
	"vfw-service/internal/infra/rabbitmq"
	"vfw-service/internal/logger"
	"vfw-service/internal/metrics"
	mysqlrepo "vfw-service/internal/repository/mysql"
	"vfw-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()
	defer log.Sync()

	db, err := mmysql.NewMySQLFromEnv()
	if err != nil {
		log.Fatal("db: connect", zap.Error(err))
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	orderRepo := mysqlrepo.NewOrderRepository(db)
	inquiryRepo := mysqlrepo.NewInquiryRepository(db)
	warrantyRepo := mysqlrepo.NewWarrantyRepository(db)

	catalogClient := infra.NewCatalogClient(os.Getenv("CATALOG_SERVICE_URL"), 2*time.Second)

	publisher, err := rabbitmq.NewPublisher(os.Getenv("RABBITMQ_URL"), "lifecycle.exchange")
	if err != nil {
		log.Fatal("failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	mail := newMailerFromEnv(log)

	orderSvc := services.NewOrderService(orderRepo, catalogClient, publisher, mail, log)
	inquirySvc := services.NewInquiryService(inquiryRepo, publisher, mail, log)
	warrantySvc := services.NewWarrantyService(warrantyRepo, catalogClient, publisher, mail, log)

	if ops := os.Getenv("OPS_EMAIL"); ops != "" {
		orderSvc.SetOpsEmail(ops)
		inquirySvc.SetOpsEmail(ops)
		warrantySvc.SetOpsEmail(ops)
	}

	var redisClient *redis.Client
	if host := os.Getenv("REDIS_HOST"); host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         host + ":6379",
			DB:           0,
			PoolSize:     100,
			MinIdleConns: 10,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		orderSvc.SetRedisClient(redisClient)
	}

	handler := httpctrl.NewHandler(orderSvc, inquirySvc, warrantySvc, redisClient)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.Middleware())

	handler.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting lifecycle service", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server run", zap.Error(err))
	}
}

func newMailerFromEnv(log *zap.Logger) mailer.Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Warn("SMTP_HOST not set, email notifications disabled")
		return mailer.NoopMailer{}
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return mailer.NewSMTPMailer(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASSWORD"), os.Getenv("SMTP_FROM"))
}
