package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ridrisa/barq-fleet-optimization-api/internal/api"
	"github.com/ridrisa/barq-fleet-optimization-api/internal/config"
	"github.com/ridrisa/barq-fleet-optimization-api/internal/logging"
	"github.com/ridrisa/barq-fleet-optimization-api/internal/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logging.Init(logging.Config{Level: "info", Format: "json"})
		log := logging.Get()
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Init(cfg.Log)
	log := logging.Component("main")

	metrics.RegisterDefault()

	srv, err := api.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init server")
	}

	mux := srv.Routes()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout.Std(),
	}

	log.Info().Str("addr", cfg.Addr()).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}
}
