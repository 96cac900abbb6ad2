package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/docsync/internal/logging"
)

// InitLogger installs a console logger tagged with app as the global
// logger and returns it.
func InitLogger(app string, cfg logging.Config) zerolog.Logger {
	return initLogger(app, cfg, os.Stdout)
}

func initLogger(app string, cfg logging.Config, out io.Writer) zerolog.Logger {
	if cfg.Bypass {
		out = io.Discard
	}
	output := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    cfg.NoColor,
		TimeFormat: time.RFC3339,
	}
	zerolog.SetGlobalLevel(cfg.Level)
	ctx := zerolog.New(output).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	logger := ctx.Str("app", app).Logger()
	log.Logger = logger
	return logger
}
