package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"signpad/internal/config"
	"signpad/internal/export"
	"signpad/internal/logging"
	padnet "signpad/internal/net"
	"signpad/internal/session"
	"signpad/internal/ui"
)

type options struct {
	configPath string
	verbose    bool
	preload    string
	out        string
	pdf        string
	signer     string
	title      string
	serve      bool
	discover   bool
	replay     string
	connect    string
}

func main() {
	// .env is optional; it only supplies defaults such as SIGNPAD_CONFIG.
	envErr := godotenv.Load()

	var o options
	flag.StringVar(&o.configPath, "config", os.Getenv("SIGNPAD_CONFIG"), "TOML config file")
	flag.BoolVar(&o.verbose, "v", false, "debug logging")
	flag.StringVar(&o.preload, "preload", "", "existing signature image to edit")
	flag.StringVar(&o.out, "out", "signature.png", "where to write the saved signature")
	flag.StringVar(&o.pdf, "pdf", "", "also write a signed-form PDF here")
	flag.StringVar(&o.signer, "signer", "", "signer name for the PDF")
	flag.StringVar(&o.title, "title", "Safety compliance form", "form title for the PDF")
	flag.BoolVar(&o.serve, "serve", false, "run the remote signing pad server")
	flag.BoolVar(&o.discover, "discover", false, "look for remote pad servers on the LAN")
	flag.StringVar(&o.replay, "replay", "", "render a recorded event script headless")
	flag.StringVar(&o.connect, "connect", "", "with -replay, send the script to a remote pad at host:port")
	flag.Parse()

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	if envErr == nil {
		logging.Logger().Debug("[pad] loaded environment from .env")
	}

	if err := run(o); err != nil {
		logging.Logger().Error("signpad failed", "err", err)
		os.Exit(1)
	}
}

func run(o options) error {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case o.discover:
		return discover(cfg)
	case o.serve:
		return runServer(ctx, cfg, o)
	case o.replay != "":
		return runReplay(ctx, cfg, o)
	default:
		return runPad(cfg, o)
	}
}

func runPad(cfg config.Config, o options) error {
	var opts []session.Option
	if o.preload != "" {
		data, err := os.ReadFile(o.preload)
		if err != nil {
			// Start blank.
			logging.Logger().Warn("[pad] preload unreadable", "path", o.preload, "err", err)
		} else {
			opts = append(opts, session.WithPreload(data))
		}
	}
	sess, err := session.New(cfg, opts...)
	if err != nil {
		return err
	}
	ui.RunApp(cfg, sess, func(png []byte) error {
		return writeArtifacts(o, sess.ID(), png)
	})
	return nil
}

func runServer(ctx context.Context, cfg config.Config, o options) error {
	srv := padnet.NewServer(cfg)
	srv.OnSaved = func(id string, png []byte) {
		if err := writeArtifacts(o, id, png); err != nil {
			logging.Logger().Warn("[pad] could not store signature", "session", id, "err", err)
		}
	}

	if cfg.Remote.Advertise {
		port, err := listenPort(cfg.Remote.Listen)
		if err != nil {
			return err
		}
		mdnsServer, err := padnet.Advertise(cfg.Remote.Service, port)
		if err != nil {
			logging.Logger().Warn("[pad] mDNS disabled", "err", err)
		} else {
			defer mdnsServer.Shutdown()
		}
		fmt.Println("Remote pad:", padnet.ShareLink(port))
	}
	return srv.ListenAndServe(ctx, cfg.Remote.Listen)
}

func discover(cfg config.Config) error {
	found := 0
	err := padnet.Browse(cfg.Remote.Service, 2*time.Second, func(addr string) {
		found++
		fmt.Println(addr)
	})
	if err != nil {
		return err
	}
	if found == 0 {
		return errors.New("no remote pads found")
	}
	return nil
}

func runReplay(ctx context.Context, cfg config.Config, o options) error {
	raw, err := os.ReadFile(o.replay)
	if err != nil {
		return err
	}
	var script padnet.Script
	if err := json.Unmarshal(raw, &script); err != nil {
		return fmt.Errorf("parse script %s: %w", o.replay, err)
	}

	if o.connect != "" {
		replies, err := padnet.Replay(ctx, o.connect, script)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		for _, r := range replies {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}

	sess, err := session.New(cfg)
	if err != nil {
		return err
	}
	if script.Bounds.W > 0 && script.Bounds.H > 0 {
		sess.SetBounds(script.Bounds)
	}
	for i, ev := range script.Events {
		if _, err := sess.Apply(ev); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	png, ok, err := sess.Save()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("script drew nothing; nothing to save")
	}
	return writeArtifacts(o, sess.ID(), png)
}

func writeArtifacts(o options, sessionID string, png []byte) error {
	if err := os.WriteFile(o.out, png, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", o.out, err)
	}
	logging.Logger().Info("[pad] signature written", "path", o.out, "session", sessionID)
	if o.pdf == "" {
		return nil
	}

	f, err := os.Create(o.pdf)
	if err != nil {
		return err
	}
	defer f.Close()
	err = export.WritePDF(f, export.Form{
		Title:     o.title,
		Signer:    o.signer,
		Reference: sessionID,
		Fields: []export.Field{
			{Label: "Signer", Value: o.signer},
			{Label: "Session", Value: sessionID},
		},
		SignedAt:  time.Now(),
		Signature: png,
	})
	if err != nil {
		return err
	}
	logging.Logger().Info("[pad] form written", "path", o.pdf)
	return f.Close()
}

func listenPort(addr string) (int, error) {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("listen address %q: %w", addr, err)
	}
	return strconv.Atoi(port)
}
