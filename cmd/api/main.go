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

	"example.com/sahakari/internal/api"
	"example.com/sahakari/internal/auth"
	"example.com/sahakari/internal/config"
	"example.com/sahakari/internal/consumer"
	"example.com/sahakari/internal/publisher"
	"example.com/sahakari/internal/report"
	"example.com/sahakari/internal/source"
	"example.com/sahakari/internal/source/memory"
	"example.com/sahakari/internal/source/postgres"
	"example.com/sahakari/internal/source/rest"
	httptransport "example.com/sahakari/internal/transport/http"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records, summaries, closeSource := openSource(ctx, cfg)
	defer closeSource()

	opts := []report.Option{report.WithTimeout(cfg.FetchTimeout)}
	if summaries != nil {
		opts = append(opts, report.WithSummaryFetcher(summaries))
	}
	registry := report.NewRegistry(records, opts...)
	registry.SetIdleTTL(cfg.SessionIdleTTL)

	var pub publisher.Publisher = publisher.Noop{}
	var wg sync.WaitGroup
	if len(cfg.KafkaBrokers) > 0 {
		producer := publisher.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()
		pub = publisher.NewExportPublisher(producer, cfg.ExportTopic)

		handler := consumer.NewParticipationHandler(registry)
		for _, topic := range cfg.ConsumerTopics {
			reader := kafka.NewReader(kafka.ReaderConfig{
				Brokers:         cfg.KafkaBrokers,
				GroupID:         cfg.ConsumerGroupID,
				Topic:           topic,
				MinBytes:        1e3,
				MaxBytes:        10e6,
				CommitInterval:  time.Second,
				ReadLagInterval: -1,
			})
			proc := consumer.NewProcessor(reader, handler)

			wg.Add(1)
			go func(topic string, r *kafka.Reader) {
				defer wg.Done()
				defer r.Close()

				log.Printf("consumer started (topic=%s, group=%s)", topic, cfg.ConsumerGroupID)
				if err := proc.Run(ctx); err != nil && err != context.Canceled {
					log.Printf("consumer stopped with error (topic=%s): %v", topic, err)
				}
			}(topic, reader)
		}
	} else {
		log.Printf("KAFKA_BROKERS not set; export events and change notifications are disabled")
	}

	handler := api.NewHandler(registry, pub)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	var metricsSrv *http.Server
	if cfg.MetricsAddress != "" {
		metricsSrv = &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler()}
		go func() {
			log.Printf("metrics listening on %s", cfg.MetricsAddress)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("metrics server error: %v", err)
			}
		}()
	} else {
		mux.Handle("/metrics", promhttp.Handler())
	}

	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.FetchTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}, httptransport.CORS(cfg.CORSOrigin, authMiddleware.Wrap(httptransport.LogRequests(log.Default(), mux))))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("report-service listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	log.Println("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("metrics server shutdown error: %v", err)
		}
	}

	wg.Wait()
}

// openSource picks the record source: the records API when configured, then
// Postgres, then an empty in-memory store.
func openSource(ctx context.Context, cfg config.Config) (source.RecordFetcher, source.SummaryFetcher, func()) {
	switch {
	case cfg.RecordsAPIURL != "":
		client := rest.New(cfg.RecordsAPIURL,
			rest.WithToken(cfg.RecordsAPIToken),
			rest.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		)
		log.Printf("reading participation records from %s", cfg.RecordsAPIURL)
		if cfg.SummaryAPIEnabled {
			return client, client, func() {}
		}
		return client, nil, func() {}
	case cfg.PostgresURL != "":
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		log.Printf("reading participation records from postgres")
		return postgres.NewRepository(pool), nil, pool.Close
	default:
		log.Printf("no record source configured; serving an empty in-memory store")
		return memory.NewStore(), nil, func() {}
	}
}
