package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ivensmba/padoca/internal/cache"
	"github.com/ivensmba/padoca/internal/config"
	"github.com/ivensmba/padoca/internal/es"
	"github.com/ivensmba/padoca/internal/handlers"
	"github.com/ivensmba/padoca/internal/logging"
	"github.com/ivensmba/padoca/internal/mykafka"
	"github.com/ivensmba/padoca/internal/service/token"
	httpserver "github.com/ivensmba/padoca/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("erro na inicialização do banco: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	// Kafka, Elasticsearch e Redis são colaboradores opcionais: sem eles o
	// serviço sobe do mesmo jeito, só sem eventos, busca ou cache.
	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		brokers := []string{configuration.KAFKA_ADDRESS}
		topics := []string{"user_events", "produto_events", "pedido_events"}
		producer, err = mykafka.NewProducer(brokers, topics)
		if err != nil {
			logger.Warn("kafka indisponível", "err", err)
		}
	}

	var esClient *elasticsearch.Client
	if configuration.ES_URL != "" {
		esClient, err = es.NewClient(configuration)
		if err != nil {
			logger.Warn("elasticsearch indisponível", "err", err)
			esClient = nil
		}
	}

	produtoCache := cache.New(configuration.REDIS_ADDR, 5*time.Minute)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())

	deps := httpserver.Deps{
		DB:  db,
		Log: logger,
		AuthHandler: &handlers.AuthHandler{
			DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: producer,
		},
		UsuarioHandler: &handlers.UsuarioHandler{DB: db},
		ProdutoHandler: &handlers.ProdutoHandler{
			DB: db, Producer: producer, ES: esClient, Index: "produto", Cache: produtoCache,
		},
		CategoriaHandler: &handlers.CategoriaHandler{DB: db},
		PedidoHandler:    handlers.NewPedidoHandler(db, producer),
		FeedbackHandler:  &handlers.FeedbackHandler{DB: db},
		DashboardHandler: &handlers.DashboardHandler{DB: db},
		SearchHandler:    &handlers.SearchHandler{ES: esClient, Index: "produto"},
		TokenService: &token.TokenService{
			DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret,
		},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.SERVER_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
		}
	}()
	logger.Info("servidor no ar", "addr", configuration.SERVER_ADDR)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("encerrando...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "err", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "err", err)
	}
	if err := produtoCache.Close(); err != nil {
		logger.Error("redis close error", "err", err)
	}

	logger.Info("shutdown completo")
}
