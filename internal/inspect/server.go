// Package inspect serves a diagnostic HTTP surface over the wire codecs:
// decoding captured messages to text and merging captured lookup chunks.
package inspect

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/docsync/internal/config"
	"github.com/danmuck/docsync/internal/observability"
	"github.com/danmuck/docsync/internal/protocol/frame"
	"github.com/danmuck/docsync/internal/remote"
	"github.com/danmuck/docsync/internal/serializer"
)

const version = "0.1.0"

type Server struct {
	Name     string
	Addr     string
	Database string
	Appeared time.Time

	router    *gin.Engine
	limits    frame.Limits
	datastore *remote.DatastoreCodec
	tls       *tls.Config
}

func New(cfg config.Config) (*Server, error) {
	vc, err := serializer.New(cfg.DatabaseID())
	if err != nil {
		return nil, err
	}
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.Inspect.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.Inspect.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", observability.RequestIDHeader},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	tlsConfig, err := loadTLS(cfg.Inspect.TLS)
	if err != nil {
		return nil, err
	}

	return &Server{
		Name:      cfg.Inspect.Name,
		Addr:      cfg.Inspect.Addr,
		Database:  vc.EncodeDatabaseID(),
		Appeared:  time.Now(),
		router:    r,
		limits:    cfg.Limits(),
		datastore: remote.NewDatastoreCodecWith(vc, cfg.Limits()),
		tls:       tlsConfig,
	}, nil
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// TLSConfig is nil when the server runs plain HTTP.
func (s *Server) TLSConfig() *tls.Config {
	return s.tls
}

func (s *Server) Serve() error {
	s.RegisterRoutes()
	log.Info().
		Str("service", s.Name).
		Str("addr", s.Addr).
		Str("database", s.Database).
		Bool("tls", s.tls != nil).
		Msg("inspect serving")
	if s.tls == nil {
		return s.router.Run(s.Addr)
	}
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		TLSConfig:         s.tls,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServeTLS("", "")
}

func loadTLS(cfg config.TLSConfig) (*tls.Config, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("inspect tls: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
