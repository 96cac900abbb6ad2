package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/docsync/internal/logging"
	"github.com/danmuck/docsync/internal/testutil/testlog"
)

func TestInitLoggerAppliesConfig(t *testing.T) {
	testlog.Start(t)
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	initLogger("wired", logging.Config{Level: zerolog.WarnLevel, NoColor: true}, &buf)
	log.Info().Msg("quiet")
	log.Warn().Msg("loud")
	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") || !strings.Contains(out, "app=wired") {
		t.Fatalf("unexpected log output %q", out)
	}

	buf.Reset()
	t.Setenv(logging.EnvLogBypass, "1")
	initLogger("wired", logging.WithEnv(logging.Config{Level: zerolog.WarnLevel}), &buf)
	log.Warn().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected bypassed output, got %q", buf.String())
	}
}
