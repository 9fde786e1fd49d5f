package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/automaxprocs/maxprocs"

	"schedwidget/internal/capture"
	"schedwidget/internal/classes"
	"schedwidget/internal/config"
	appLog "schedwidget/internal/log"
	"schedwidget/internal/web"
	"schedwidget/internal/widget"
)

const version = "0.1.0"

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	in         string
	out        string
	snapshot   string
	debug      bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	if err := appLog.Setup(conf.Log.Level, conf.Log.Format); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer appLog.Sync()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		appLog.Debug(fmt.Sprintf(format, args...))
	})); err != nil {
		appLog.Error("failed to set GOMAXPROCS", err)
	}

	appLog.Info("schedwidget starting", "version", version)
	appLog.Info("effective config",
		"listen", conf.Listen,
		"page", conf.Page,
		"language", conf.Language,
		"timezone", conf.Timezone,
		"http_timeout", conf.HTTPTimeout.String(),
		"snapshot_cron", conf.Snapshot.Cron,
		"in", flags.in,
		"snapshot", flags.snapshot,
	)

	w := buildWidget(conf)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	switch {
	case flags.in != "":
		err = runRenderFile(ctx, w, flags.in, flags.out)
	case flags.snapshot != "":
		err = runSnapshotOnce(ctx, conf, w, flags.snapshot)
	default:
		err = runServer(ctx, conf, w)
	}
	if err != nil {
		appLog.Error("schedwidget failed", err)
		appLog.Sync()
		os.Exit(1)
	}

	appLog.Info("schedwidget exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/schedwidget/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.in, "in", "", "Render the widget mounts of this HTML file once and exit")
	flag.StringVar(&cfg.out, "out", "-", "Output path for -in (\"-\" writes to stdout)")
	flag.StringVar(&cfg.snapshot, "snapshot", "", "Capture a PNG of the served page to this path and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}

func buildWidget(conf *config.Config) *widget.Widget {
	loc, err := conf.LoadLocation()
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", conf.Timezone)
	}

	client := classes.NewClient(conf.HTTPTimeout)
	client.UserAgent = "schedwidget/" + version

	r := widget.NewRenderer(widget.MessagesFor(conf.Language))
	r.Location = loc
	r.Layout = conf.TimestampLayout

	return widget.New(client, r)
}

// runRenderFile processes one HTML file as a single page load.
func runRenderFile(ctx context.Context, w *widget.Widget, in, out string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	var dst io.Writer = os.Stdout
	if out != "" && out != "-" {
		of, err := os.Create(out)
		if err != nil {
			return err
		}
		defer of.Close()
		dst = of
	}

	results, err := w.ProcessHTML(ctx, f, dst)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.State == widget.StateFailed {
			failed++
		}
	}
	appLog.Info("page rendered", "in", in, "out", out, "mounts", len(results), "failed", failed)
	return nil
}

func runServer(ctx context.Context, conf *config.Config, w *widget.Widget) error {
	if conf.Snapshot.Cron != "" {
		c := cron.New()
		_, err := c.AddFunc(conf.Snapshot.Cron, func() {
			if err := snapshot(ctx, conf, conf.Snapshot.Path); err != nil {
				appLog.Error("scheduled snapshot failed", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid snapshot cron %q: %w", conf.Snapshot.Cron, err)
		}
		c.Start()
		defer c.Stop()
		appLog.Info("snapshot scheduler started", "cron", conf.Snapshot.Cron, "path", conf.Snapshot.Path)
	}

	return web.StartServer(ctx, conf, w)
}

// runSnapshotOnce starts the server, captures one PNG of "/" and stops.
func runSnapshotOnce(ctx context.Context, conf *config.Config, w *widget.Widget, path string) error {
	srvCtx, stop := context.WithCancel(ctx)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- web.StartServer(srvCtx, conf, w)
	}()

	if err := waitHealthy(ctx, "http://"+conf.Listen+"/health", errCh); err != nil {
		return err
	}
	if err := snapshot(ctx, conf, path); err != nil {
		return err
	}

	stop()
	return <-errCh
}

func snapshot(ctx context.Context, conf *config.Config, path string) error {
	start := time.Now()
	err := capture.CapturePagePNG(ctx, capture.Options{
		URL:        "http://" + conf.Listen + "/",
		OutputPath: path,
		Width:      conf.Snapshot.Width,
		Height:     conf.Snapshot.Height,
	})
	if err != nil {
		return err
	}
	appLog.Info("snapshot written", "path", path, "elapsed", time.Since(start).String())
	return nil
}

func waitHealthy(ctx context.Context, url string, errCh <-chan error) error {
	client := &http.Client{Timeout: time.Second}
	for i := 0; i < 50; i++ {
		select {
		case err := <-errCh:
			if err == nil {
				err = errors.New("server stopped before becoming healthy")
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server at %s did not become healthy", url)
}
