package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"eventnotify/internal/config"
	appLog "eventnotify/internal/log"
	"eventnotify/internal/pipeline"
	"eventnotify/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	dryRun     bool
	date       string
	debug      bool
}

func main() {
	appLog.Info("eventnotify starting", "version", "1.0.0")

	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	overrides, err := config.LoadOverrides()
	if err != nil {
		appLog.Error("failed to read environment overrides", err)
		os.Exit(1)
	}
	if flags.dryRun {
		overrides.DryRun = true
	}
	if flags.date != "" {
		overrides.TargetDate = flags.date
	}
	conf.Apply(overrides)

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"dispatch", conf.DispatchCron,
		"sources", len(conf.Sources),
		"manual_events", len(conf.ManualEvents),
		"include_future", conf.IncludeFuture,
		"once", flags.once,
		"dry_run", overrides.DryRun,
	)

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

	p, err := pipeline.New(conf, overrides)
	if err != nil {
		appLog.Error("failed to initialize pipeline", err)
		os.Exit(1)
	}

	if flags.once {
		runOnce(ctx, p)
		return
	}

	// Background scheduler: refresh and dispatch on their cron specs.
	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, func() {
		if err := p.Refresh(ctx); err != nil {
			appLog.Error("scheduled refresh failed", err)
		}
	}); err != nil {
		appLog.Error("invalid refresh cron spec", err, "spec", conf.RefreshCron)
		os.Exit(1)
	}
	if _, err := c.AddFunc(conf.DispatchCron, func() {
		if err := p.Dispatch(ctx); err != nil {
			appLog.Error("scheduled dispatch failed", err)
		}
	}); err != nil {
		appLog.Error("invalid dispatch cron spec", err, "spec", conf.DispatchCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	// Status API + published site.
	server := web.NewServer(conf, p.Store(), sourceCodes(conf), p.TargetDate)
	httpSrv := &http.Server{Addr: conf.Listen, Handler: server.Handler()}

	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error("http server failed", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("http shutdown failed", err)
	}
	appLog.Info("eventnotify exiting")
}

// runOnce executes one refresh+dispatch cycle and exits, for CI-driven
// scheduled runs.
func runOnce(ctx context.Context, p *pipeline.Pipeline) {
	if err := p.Refresh(ctx); err != nil {
		appLog.Error("refresh failed", err)
		os.Exit(1)
	}
	if err := p.Dispatch(ctx); err != nil {
		appLog.Error("dispatch failed", err)
		os.Exit(1)
	}
}

func sourceCodes(conf *config.Config) []string {
	codes := make([]string, 0, len(conf.Sources))
	for _, s := range conf.Sources {
		codes = append(codes, s.Code)
	}
	return codes
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/eventnotify/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one refresh+dispatch cycle and exit")
	flag.BoolVar(&cfg.dryRun, "dry-run", false, "Build the digest but do not send it")
	flag.StringVar(&cfg.date, "date", "", "Target date YYYY-MM-DD (defaults to today in the configured timezone)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
