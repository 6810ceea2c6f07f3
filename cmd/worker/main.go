package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/devpatel-io/agent-storefront/internal/config"
	kafkax "github.com/devpatel-io/agent-storefront/internal/kafka"
	"github.com/devpatel-io/agent-storefront/internal/mongox"
	"github.com/devpatel-io/agent-storefront/internal/orders"
	"github.com/devpatel-io/agent-storefront/internal/redisx"
	"github.com/devpatel-io/agent-storefront/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mc, err := mongox.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &worker.Service{
		Repo:        &orders.Repo{DB: mc.Database(cfg.MongoDB)},
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-worker",
	}

	for _, topic := range []string{orders.TopicOrderSubmitted, orders.TopicOrderUpdated} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WorkerGroup, topic, cfg.WorkerWorkers)
		go func(topic string, cons *kafkax.Consumer) {
			log.Printf("order worker started: group=%s topic=%s workers=%d",
				cfg.WorkerGroup, topic, cfg.WorkerWorkers)
			if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
				log.Printf("consumer exit (%s): %v", topic, err)
				cancel()
			}
		}(topic, cons)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down worker...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
