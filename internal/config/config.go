package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr      string
	MongoURI      string
	MongoDB       string
	RedisAddr     string
	KafkaBrokers  []string
	ServiceName   string
	WorkerGroup   string
	WorkerWorkers int
}

func Load() Config {
	return Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		MongoURI:      getenv("MONGO_URI", "mongodb://mongo:27017"),
		MongoDB:       getenv("MONGO_DB", "storefront"),
		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		KafkaBrokers:  splitCSV(getenv("KAFKA_BROKERS", "kafka:9092")),
		ServiceName:   getenv("SERVICE_NAME", "storefront-api"),
		WorkerGroup:   getenv("WORKER_GROUP", "order-status-worker"),
		WorkerWorkers: getenvInt("WORKER_WORKERS", 4),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return def
	}
	return i
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
