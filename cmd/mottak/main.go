// cmd/mottak/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"soknad-mottak/internal/common/auth"
	"soknad-mottak/internal/common/config"
	"soknad-mottak/internal/common/health"
	"soknad-mottak/internal/common/logger"
	"soknad-mottak/internal/common/observability"
	"soknad-mottak/internal/common/retry"
	"soknad-mottak/internal/dittnav"
	ettersendingv1 "soknad-mottak/internal/ettersending/v1"
	"soknad-mottak/internal/gateway/aktoer"
	"soknad-mottak/internal/gateway/dokument"
	"soknad-mottak/internal/kafka"
	mottakv1 "soknad-mottak/internal/mottak/v1"
	transport "soknad-mottak/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrapLog := logger.New("info", "console")
		bootstrapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting soknad-mottak...",
		zap.String("addr", cfg.Server.Addr),
		zap.String("environment", cfg.App.Environment),
	)

	metrics := observability.New("soknad_mottak", prometheus.DefaultRegisterer)

	policy := retry.Policy{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: time.Duration(cfg.Retry.InitialDelay) * time.Millisecond,
		Factor:       2.0,
	}

	tokens := auth.NewAccessTokenClient(cfg.Auth.TokenEndpoint, cfg.Auth.ClientID, cfg.Auth.ClientSecret)

	// --- Downstream gateways ---
	aktoerGateway := aktoer.NewGateway(
		cfg.AktoerRegister.BaseURL,
		cfg.App.Name,
		tokens,
		policy,
		metrics,
		log,
	)
	dokumentGateway := dokument.NewGateway(
		cfg.K9Dokument.BaseURL,
		cfg.K9Dokument.Scopes,
		tokens,
		policy,
		metrics,
		log,
	)

	// --- Kafka ---
	kafkaClient, err := kafka.NewClient(cfg.Kafka, cfg.App.Name, log)
	if err != nil {
		zapLog.Fatal("kafka client failed", zap.Error(err))
	}

	mottattProducer := kafka.NewProducer("pleiepengesoknad-mottatt", cfg.Kafka.MottattTopic, kafkaClient, metrics, log)
	ettersendingProducer := kafka.NewProducer("pleiepengesoknad-ettersending-mottatt", cfg.Kafka.EttersendingMottattTopic, kafkaClient, metrics, log)

	var varsler mottakv1.Varsler
	if cfg.DittNav.Enabled {
		beskjedProducer := kafka.NewProducer("dittnav-beskjed", cfg.Kafka.BeskjedTopic, kafkaClient, metrics, log)
		varsler = dittnav.NewNotifier(beskjedProducer, cfg.DittNav, log)
	}

	// --- Services and transport ---
	soknadService := mottakv1.NewService(aktoerGateway, dokumentGateway, mottattProducer, varsler, metrics, log)
	ettersendingService := ettersendingv1.NewService(aktoerGateway, dokumentGateway, ettersendingProducer, metrics, log)

	healthService := health.NewService(dokumentGateway, mottattProducer, ettersendingProducer)
	handler := transport.NewHandler(soknadService, ettersendingService, log)
	router := transport.NewRouter(handler, healthService, prometheus.DefaultGatherer, cfg.Auth.Required)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}
	if err := kafkaClient.Stop(shutdownCtx); err != nil {
		zapLog.Error("kafka shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}
