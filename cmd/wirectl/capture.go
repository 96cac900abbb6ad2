package main

import (
	"encoding/hex"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/danmuck/docsync/internal/model"
)

// capture is a recorded lookup response stream.
type capture struct {
	Database model.DatabaseID
	Chunks   [][]byte
	Notes    []string
}

type captureFile struct {
	Project  string `toml:"project"`
	Database string `toml:"database"`
	Chunk    []struct {
		Note string `toml:"note"`
		Hex  string `toml:"hex"`
	} `toml:"chunk"`
}

// loadCapture reads a capture file. Flags override the file's project and
// database only when the file leaves them out.
func loadCapture(path, project, database string) (capture, error) {
	var raw captureFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return capture{}, errors.Wrapf(err, "load capture %s", path)
	}
	if meta.IsDefined("project") {
		project = strings.TrimSpace(raw.Project)
	}
	if meta.IsDefined("database") {
		database = strings.TrimSpace(raw.Database)
	}
	if project == "" {
		return capture{}, errors.Errorf("capture %s: project is required", path)
	}

	out := capture{Database: model.NewDatabaseID(project, database)}
	for i, c := range raw.Chunk {
		b, err := decodeHex(c.Hex)
		if err != nil {
			return capture{}, errors.Wrapf(err, "capture %s chunk[%d]", path, i)
		}
		out.Chunks = append(out.Chunks, b)
		out.Notes = append(out.Notes, c.Note)
	}
	return out, nil
}

// decodeHex accepts hex with optional whitespace and a 0x prefix.
func decodeHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(s, "0x")
	return hex.DecodeString(s)
}
