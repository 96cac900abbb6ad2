package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/docsync/internal/model"
	"github.com/danmuck/docsync/internal/protocol"
	"github.com/danmuck/docsync/internal/protocol/codec"
	"github.com/danmuck/docsync/internal/protocol/frame"
	"github.com/danmuck/docsync/internal/protocol/schema"
	"github.com/danmuck/docsync/internal/protocol/syncpb"
	"github.com/danmuck/docsync/internal/remote"
	"github.com/danmuck/docsync/internal/serializer"
	"github.com/danmuck/docsync/internal/testutil/testlog"
)

func chunkHex(t *testing.T, vc *serializer.Serializer, path string, seconds int64) string {
	t.Helper()
	doc := vc.EncodeDocument(model.MustDocumentKey(path), model.ObjectValue{"p": path})
	doc.UpdateTime = &syncpb.Timestamp{Seconds: seconds}
	b, err := codec.ToContiguousBytes(codec.Encode(&syncpb.BatchGetDocumentsResponse{Found: doc}))
	if err != nil {
		t.Fatalf("encode chunk: %v", err)
	}
	return hex.EncodeToString(b)
}

func TestLoadCaptureAndMerge(t *testing.T) {
	testlog.Start(t)
	vc, err := serializer.New(model.NewDatabaseID("cap", ""))
	if err != nil {
		t.Fatalf("serializer: %v", err)
	}
	content := "project = \"cap\"\n\n" +
		"[[chunk]]\nnote = \"first\"\nhex = \"" + chunkHex(t, vc, "rooms/b", 1) + "\"\n\n" +
		"[[chunk]]\nhex = \"0x" + chunkHex(t, vc, "rooms/a", 1) + "\"\n\n" +
		"[[chunk]]\nhex = \"" + chunkHex(t, vc, "rooms/b", 3) + "\"\n"
	path := filepath.Join(t.TempDir(), "capture.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write capture: %v", err)
	}

	c, err := loadCapture(path, "ignored", "")
	if err != nil {
		t.Fatalf("load capture: %v", err)
	}
	if c.Database.ProjectID != "cap" || c.Database.Database != model.DefaultDatabase || len(c.Chunks) != 3 || c.Notes[0] != "first" {
		t.Fatalf("unexpected capture: %+v", c)
	}

	var out bytes.Buffer
	if err := mergeCaptured(&out, c); err != nil {
		t.Fatalf("merge: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "rooms/a") || !strings.Contains(lines[1], "rooms/b") {
		t.Fatalf("unexpected merge output:\n%s", out.String())
	}
	if !strings.Contains(lines[1], "3.000000000") {
		t.Fatalf("expected latest rooms/b chunk, got %s", lines[1])
	}
}

func TestLoadCaptureRequiresProject(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "capture.toml")
	if err := os.WriteFile(path, []byte("[[chunk]]\nhex = \"\"\n"), 0o600); err != nil {
		t.Fatalf("write capture: %v", err)
	}
	if _, err := loadCapture(path, "", ""); err == nil {
		t.Fatalf("expected missing project error")
	}
	c, err := loadCapture(path, "flagged", "")
	if err != nil || c.Database.ProjectID != "flagged" {
		t.Fatalf("expected flag project, got %+v %v", c, err)
	}
}

func TestMergeCapturedReportsParseError(t *testing.T) {
	testlog.Start(t)
	c := capture{Database: model.NewDatabaseID("p", ""), Chunks: [][]byte{{0x0A, 0x05}}}
	err := mergeCaptured(&bytes.Buffer{}, c)
	if !errors.Is(err, protocol.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestHandshakeFramedDecodesBack(t *testing.T) {
	testlog.Start(t)
	vc, err := serializer.New(model.NewDatabaseID("p", "d"))
	if err != nil {
		t.Fatalf("serializer: %v", err)
	}
	var buf bytes.Buffer
	if err := writeHandshake(&buf, remote.NewWriteCodec(vc), true); err != nil {
		t.Fatalf("write handshake: %v", err)
	}
	if err := writeHandshake(&buf, remote.NewWriteCodec(vc), true); err != nil {
		t.Fatalf("write handshake: %v", err)
	}
	var out bytes.Buffer
	if err := decodeStream(&out, &buf, schema.MsgWriteRequest, frame.DefaultLimits()); err != nil {
		t.Fatalf("decode stream: %v", err)
	}
	want := "0\tWriteRequest{database:\"projects/p/databases/d\"}\n1\tWriteRequest{database:\"projects/p/databases/d\"}\n"
	if out.String() != want {
		t.Fatalf("unexpected stream output:\n%s", out.String())
	}
}

func TestDecodeHexAcceptsWhitespaceAndPrefix(t *testing.T) {
	testlog.Start(t)
	b, err := decodeHex("0x0a 02\n6162")
	if err != nil || !bytes.Equal(b, []byte{0x0A, 0x02, 'a', 'b'}) {
		t.Fatalf("unexpected hex decode: %x %v", b, err)
	}
}
