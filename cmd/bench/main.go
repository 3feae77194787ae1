package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/drakos74/free-learn/infra/config"
	"github.com/drakos74/free-learn/internal/bench"
	"github.com/drakos74/free-learn/internal/metrics"
	"github.com/drakos74/free-learn/internal/storage"
	"github.com/drakos74/free-learn/internal/storage/file/json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {

	path := flag.String("config", "bench", "config file, json or yaml, or the key of a default config under infra/config")
	debug := flag.Bool("debug", false, "log debug events")
	addr := flag.String("metrics", "", "address to serve prometheus metrics on, overrides the config")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := bench.DefaultConfig()
	if filepath.Ext(*path) == "" {
		config.MustLoad(*path, &cfg)
	} else if err := config.Load(*path, &cfg); err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	if *addr != "" {
		cfg.Metrics = *addr
	}

	shard := json.BlobShard(cfg.Storage.Dir, "bench")
	if cfg.Storage.Void {
		shard = storage.VoidShard()
	}

	m := metrics.New()
	if cfg.Metrics != "" {
		srv := m.Serve(cfg.Metrics)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Error().Err(err).Msg("could not stop metrics server")
			}
		}()
	}

	runner, err := bench.NewRunner(cfg, shard, m)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create runner")
	}

	records, err := runner.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load records")
	}

	summary, err := runner.Prepare(records)
	if err != nil {
		log.Fatal().Err(err).Msg("could not prepare dataset")
	}

	reports, err := runner.Run()
	// print whatever completed before a failure
	Print(os.Stdout, summary, reports)
	if err != nil {
		log.Fatal().Err(err).Msg("could not complete runs")
	}
}
