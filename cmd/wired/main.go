package main

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/danmuck/docsync/internal/config"
	"github.com/danmuck/docsync/internal/inspect"
	"github.com/danmuck/docsync/internal/logging"
	"github.com/danmuck/docsync/internal/observability"
)

var (
	configPath = kingpin.Flag("config", "Path to wired config.").Short('c').Default("wired.toml").String()
	addr       = kingpin.Flag("addr", "Override the listen address.").String()
	release    = kingpin.Flag("release", "Run gin in release mode.").Bool()
)

func main() {
	kingpin.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("load config")
	}
	if *addr != "" {
		cfg.Inspect.Addr = *addr
	}

	level, ok := logging.ParseLevel(cfg.Inspect.LogLevel)
	if !ok {
		level = zerolog.InfoLevel
	}
	observability.InitLogger(cfg.Inspect.Name, logging.WithEnv(logging.Config{Level: level, Timestamp: true}))
	if *release {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := inspect.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build inspect server")
	}
	if err := srv.Serve(); err != nil {
		log.Fatal().Err(err).Msg("inspect server stopped")
	}
}
