package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/devpatel-io/agent-storefront/internal/config"
	"github.com/devpatel-io/agent-storefront/internal/filter"
	"github.com/devpatel-io/agent-storefront/internal/httpx"
	kafkax "github.com/devpatel-io/agent-storefront/internal/kafka"
	"github.com/devpatel-io/agent-storefront/internal/mongox"
	"github.com/devpatel-io/agent-storefront/internal/orders"
	"github.com/devpatel-io/agent-storefront/internal/redisx"
	"github.com/devpatel-io/agent-storefront/internal/templates"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mongo
	mc, err := mongox.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	db := mc.Database(cfg.MongoDB)

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderSubmitted, 1024)
	prod.Start(ctx)
	prodUpd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderUpdated, 1024)
	prodUpd.Start(ctx)

	// Repos & indexes
	orderRepo := &orders.Repo{DB: db}
	templateRepo := &templates.Repo{DB: db}
	if err := orderRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("order indexes: %v", err)
	}
	if err := templateRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("template indexes: %v", err)
	}

	// Handlers
	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Repo:           orderRepo,
		Producer:       prod,
		UpdateProducer: prodUpd,
		Redis:          rdb,
		Service:        cfg.ServiceName,
	}
	oh.Register(router)
	(&httpx.TemplatesHandler{Repo: templateRepo}).Register(router)
	(&httpx.FilterHandler{Gateway: &filter.Gateway{DB: db}}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // stop intake, flush remaining messages
	prodUpd.Close()
	cancel() // stop producer loops
	prod.WaitClosed()
	prodUpd.WaitClosed()
}
