package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"github.com/przemyslaw-muller/allworkouts/internal/catalog"
	"github.com/przemyslaw-muller/allworkouts/internal/config"
	"github.com/przemyslaw-muller/allworkouts/internal/consumer"
)

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for the catalog projector")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsSrv := &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler()}
	go func() {
		log.Printf("catalog projector metrics listening on %s", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	handler := consumer.NewCatalogHandler(catalog.NewPostgresCatalog(pool))
	var wg sync.WaitGroup

	for _, topic := range cfg.ConsumerTopics {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.KafkaBrokers,
			GroupID:        cfg.ConsumerGroup,
			Topic:          topic,
			MinBytes:       1e3,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
		})
		proc := consumer.NewProcessor(reader, handler)

		wg.Add(1)
		go func(tp string, r *kafka.Reader) {
			defer wg.Done()
			defer r.Close()
			if err := proc.Run(ctx); err != nil && err != context.Canceled {
				log.Printf("projector stopped with error (topic=%s): %v", tp, err)
			}
		}(topic, reader)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
	log.Println("catalog projector shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics shutdown error: %v", err)
	}

	wg.Wait()
}
