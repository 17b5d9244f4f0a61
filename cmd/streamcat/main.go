// File: cmd/streamcat/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// streamcat copies stdin to stdout through a pair of flow-controlled
// streams: stdin -> readable stream -> pump -> writable stream -> stdout.
//
//	streamcat [-config hiostream.yaml] [-raw] [-metrics 127.0.0.1:9464]
//
// SIGHUP reloads the configuration file (log level applies immediately).

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-stream/affinity"
	"github.com/momentics/hioload-stream/api"
	"github.com/momentics/hioload-stream/control"
	"github.com/momentics/hioload-stream/driver"
	"github.com/momentics/hioload-stream/event"
	"github.com/momentics/hioload-stream/pool"
	"github.com/momentics/hioload-stream/pump"
	"github.com/momentics/hioload-stream/reactor"
	"github.com/momentics/hioload-stream/stream"
)

var Version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	raw := flag.Bool("raw", false, "Put a terminal stdin into raw mode")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("streamcat", Version)
		return
	}

	loader := control.NewLoader().WithConfigPath(*configPath).WithValidator(control.Validate)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "streamcat: %v\n", err)
		os.Exit(1)
	}
	if *raw {
		cfg.Console.Raw = true
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = *metricsAddr
	}

	logger, level := control.NewLogger(cfg.Log)
	defer logger.Sync() //nolint:errcheck

	store := control.NewConfigStore(cfg)
	store.OnReload(func(old, cur *control.Config) {
		if old.Log.Level != cur.Log.Level {
			level.SetLevel(control.ParseLevel(cur.Log.Level))
			logger.Info("log level changed", zap.String("level", cur.Log.Level))
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, loader, store, logger); err != nil {
		logger.Error("streamcat failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, loader *control.Loader, store *control.ConfigStore, logger *zap.Logger) error {
	cfg := store.Get()
	ns := cfg.Metrics.Namespace

	arena := pool.NewArena(int(cfg.Arena.Budget))
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), control.NewArenaCollector(ns, arena))
	metrics := control.NewStreamMetrics(ns, reg)

	probes := control.NewDebugProbes()
	control.RegisterPlatformProbes(probes)
	probes.RegisterAllocator("arena", arena)
	probes.RegisterProbe("config", func() any { return store.GetSnapshot() })

	stdinFd, stdoutFd := int(os.Stdin.Fd()), int(os.Stdout.Fd())
	if cfg.Console.Raw {
		restore, err := enterRawMode(stdinFd)
		if err != nil {
			logger.Warn("raw mode unavailable", zap.Error(err))
		} else {
			defer restore()
		}
	}

	in, err := driver.NewFD(stdinFd, driver.WithChunk(cfg.Console.Chunk), driver.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("stdin: %w", err)
	}
	defer in.Close()
	out, err := driver.NewFD(stdoutFd, driver.WithChunk(cfg.Console.Chunk), driver.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("stdout: %w", err)
	}
	defer out.Close()

	loop := event.NewLoop(event.WithLogger(logger))
	common := []stream.Option{
		stream.WithEmitter(loop),
		stream.WithAllocator(arena),
		stream.WithObserver(metrics),
		stream.WithLogger(logger),
	}
	src, err := stream.NewReadable(cfg.Console.RxCapacity, in.DemandRx,
		append(common, stream.WithName("stdin"))...)
	if err != nil {
		return err
	}
	dst, err := stream.NewWritable(cfg.Console.TxCapacity, out.DemandTx,
		append(common, stream.WithName("stdout"), stream.WithEventBase(api.EventCount))...)
	if err != nil {
		return err
	}
	in.Bind(src)
	out.Bind(dst)
	probes.RegisterStream(src)
	probes.RegisterStream(dst)

	if err := src.Pipe(dst); err != nil {
		return err
	}
	pm := pump.NewPump(pump.WithChunk(cfg.Console.Chunk), pump.WithLogger(logger))
	if err := pm.Attach(src); err != nil {
		return err
	}

	loop.On(api.EventEnd, func(api.EventCode) { logger.Debug("stdin reached end of file") })
	loop.On(api.EventError, func(api.EventCode) {
		logger.Warn("stdin error", zap.Int("code", src.ErrorCode()))
	})
	loop.On(api.EventCount+api.EventError, func(api.EventCode) {
		logger.Warn("stdout error", zap.Int("code", dst.ErrorCode()))
	})
	loop.On(api.EventCount+api.EventFinish, func(api.EventCode) { logger.Debug("stdout finished") })

	re, err := reactor.NewReactor()
	if err != nil {
		logger.Warn("no reactor, polling every step", zap.Error(err))
		re = nil
	} else {
		defer re.Close()
	}
	poller := driver.NewPoller(re,
		driver.WithLoop(loop),
		driver.WithPump(pm),
		driver.WithIdle(cfg.Console.Idle),
		driver.WithPollerLogger(logger))
	defer poller.Close()
	if err := poller.Add(in); err != nil {
		return err
	}
	if err := poller.Add(out); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		unlock, err := affinity.Pin(cfg.Console.CPU)
		if err != nil {
			logger.Warn("cpu pinning failed", zap.Int("cpu", cfg.Console.CPU), zap.Error(err))
		} else {
			defer unlock()
		}
		logger.Info("streamcat started", zap.Int("rx_capacity", cfg.Console.RxCapacity), zap.Int("tx_capacity", cfg.Console.TxCapacity))
		return poller.Run(gctx)
	})

	g.Go(func() error {
		return watchReload(gctx, loader, store, logger)
	})

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("metrics listening", zap.String("addr", cfg.Metrics.Listen))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Debug("final state", zap.Any("probes", probes.DumpState()))
	logger.Info("streamcat stopped")
	return err
}

// watchReload reloads the configuration on SIGHUP until ctx is done.
func watchReload(ctx context.Context, loader *control.Loader, store *control.ConfigStore, logger *zap.Logger) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			cfg, err := loader.Load()
			if err != nil {
				logger.Warn("config reload failed", zap.Error(err))
				continue
			}
			if err := store.Update(cfg); err != nil {
				logger.Warn("config reload rejected", zap.Error(err))
			}
		}
	}
}
