package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "wired", "service":
		return serviceTemplate, nil
	case "capture":
		return captureTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const serviceTemplate = `[database]
project = "demo-project"
database = "(default)"

[frame]
max_message_bytes = 4194304
segment_bytes = 16384

[inspect]
name = "wired"
addr = ":9400"
log_level = "info"
cors_origins = ["http://localhost:3000"]

# [inspect.tls]
# cert_file = "wired.crt"
# key_file = "wired.key"
`

const captureTemplate = `# Lookup response chunks in arrival order. Payloads are hex encoded.
project = "demo-project"
database = "(default)"

[[chunk]]
note = "first"
hex = ""
`
