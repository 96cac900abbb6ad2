package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/danmuck/docsync/internal/config"
	"github.com/danmuck/docsync/internal/logging"
	"github.com/danmuck/docsync/internal/model"
	"github.com/danmuck/docsync/internal/protocol/codec"
	"github.com/danmuck/docsync/internal/protocol/frame"
	"github.com/danmuck/docsync/internal/protocol/schema"
	"github.com/danmuck/docsync/internal/protocol/syncpb"
	"github.com/danmuck/docsync/internal/protocol/wiretext"
	"github.com/danmuck/docsync/internal/remote"
	"github.com/danmuck/docsync/internal/serializer"
)

var (
	app = kingpin.New("wirectl", "Inspect and build docsync wire messages.")

	decodeCmd     = app.Command("decode", "Decode a captured message and print it as text.")
	decodeMessage = decodeCmd.Arg("message", "Message name, e.g. ListenResponse.").Required().String()
	decodeInput   = decodeCmd.Arg("file", "Input file (default stdin).").String()
	decodeHexIn   = decodeCmd.Flag("hex", "Input is hex text.").Bool()
	decodeFramed  = decodeCmd.Flag("framed", "Input is a stream of length-prefixed messages.").Bool()

	mergeCmd      = app.Command("merge", "Merge captured lookup response chunks.")
	mergeCapture  = mergeCmd.Arg("capture", "Capture file (TOML).").Required().ExistingFile()
	mergeProject  = mergeCmd.Flag("project", "Project id when the capture has none.").String()
	mergeDatabase = mergeCmd.Flag("database", "Database id when the capture has none.").Default(model.DefaultDatabase).String()

	handshakeCmd      = app.Command("handshake", "Print the write stream handshake for a database.")
	handshakeProject  = handshakeCmd.Flag("project", "Project id.").Required().String()
	handshakeDatabase = handshakeCmd.Flag("database", "Database id.").Default(model.DefaultDatabase).String()
	handshakeFramed   = handshakeCmd.Flag("framed", "Write a length-prefixed frame instead of hex.").Bool()

	configCmd      = app.Command("config", "Service config templates.")
	configInitCmd  = configCmd.Command("init", "Write a config template.")
	configKind     = configInitCmd.Flag("kind", "Template kind: wired|capture.").Default("wired").String()
	configOutput   = configInitCmd.Flag("output", "Output path.").Default("wired.toml").String()
	configForce    = configInitCmd.Flag("force", "Overwrite an existing file.").Bool()
	configCheckCmd = configCmd.Command("validate", "Validate a service config.")
	configInput    = configCheckCmd.Arg("file", "Config path.").Default("wired.toml").String()

	logLevel = app.Flag("log-level", "Log level.").Default("warn").String()
)

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))
	logging.ConfigureRuntime()
	if lvl, ok := logging.ParseLevel(*logLevel); ok {
		zerolog.SetGlobalLevel(lvl)
	}

	var err error
	switch cmd {
	case decodeCmd.FullCommand():
		err = runDecode(os.Stdout)
	case mergeCmd.FullCommand():
		err = runMerge(os.Stdout)
	case handshakeCmd.FullCommand():
		err = runHandshake(os.Stdout)
	case configInitCmd.FullCommand():
		err = config.WriteTemplate(*configOutput, *configKind, *configForce)
		if err == nil {
			fmt.Printf("wrote %s template to %s\n", *configKind, *configOutput)
		}
	case configCheckCmd.FullCommand():
		_, err = config.Load(*configInput)
		if err == nil {
			fmt.Printf("validated %s\n", *configInput)
		}
	}
	app.FatalIfError(err, "%s", cmd)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return f, nil
}

func runDecode(out io.Writer) error {
	mt, ok := schema.Lookup(*decodeMessage)
	if !ok {
		return errors.Errorf("unknown message %q", *decodeMessage)
	}
	in, err := openInput(*decodeInput)
	if err != nil {
		return err
	}
	defer in.Close()

	if *decodeFramed {
		return decodeStream(out, bufio.NewReader(in), mt, frame.DefaultLimits())
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "read input")
	}
	if *decodeHexIn {
		if data, err = decodeHex(string(data)); err != nil {
			return errors.Wrap(err, "decode hex input")
		}
	}
	text, err := decodeText(mt, data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, text)
	return err
}

// decodeText validates data as mt and renders it.
func decodeText(mt schema.MessageType, data []byte) (string, error) {
	msg, _ := syncpb.New(mt)
	if err := codec.Decode(data, msg); err != nil {
		return "", err
	}
	return wiretext.FormatBytes(mt, data)
}

func decodeStream(out io.Writer, r io.Reader, mt schema.MessageType, limits frame.Limits) error {
	for i := 0; ; i++ {
		payload, err := frame.ReadMessage(r, limits)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read frame %d", i)
		}
		text, err := decodeText(mt, payload)
		if err != nil {
			return errors.Wrapf(err, "frame %d", i)
		}
		if _, err := fmt.Fprintf(out, "%d\t%s\n", i, text); err != nil {
			return err
		}
	}
}

func runMerge(out io.Writer) error {
	c, err := loadCapture(*mergeCapture, *mergeProject, *mergeDatabase)
	if err != nil {
		return err
	}
	return mergeCaptured(out, c)
}

func mergeCaptured(out io.Writer, c capture) error {
	vc, err := serializer.New(c.Database)
	if err != nil {
		return err
	}
	docs, err := remote.NewDatastoreCodec(vc).MergeLookupResponses(c.Chunks)
	if err != nil {
		return errors.Wrapf(err, "merge %d chunks", len(c.Chunks))
	}
	for _, d := range docs {
		if _, err := fmt.Fprintln(out, d); err != nil {
			return err
		}
	}
	return nil
}

func runHandshake(out io.Writer) error {
	vc, err := serializer.New(model.NewDatabaseID(*handshakeProject, *handshakeDatabase))
	if err != nil {
		return err
	}
	return writeHandshake(out, remote.NewWriteCodec(vc), *handshakeFramed)
}

func writeHandshake(out io.Writer, wc *remote.WriteCodec, framed bool) error {
	buf := codec.Encode(wc.HandshakeRequest())
	if framed {
		return frame.WriteMessage(out, buf, frame.DefaultLimits())
	}
	data, err := codec.ToContiguousBytes(buf)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hex.EncodeToString(data))
	return err
}
