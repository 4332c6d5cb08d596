// File: cmd/wsreactor/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// wsreactor runs the event-loop WebSocket server until SIGINT or SIGTERM.
// Every flag can also be set through a WSREACTOR_ prefixed environment
// variable, e.g. WSREACTOR_ADDR=0.0.0.0:10000.

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

	"github.com/momentics/wsreactor/control"
	"github.com/momentics/wsreactor/server"
	"github.com/peterbourgon/ff/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "wsreactor:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	def := server.DefaultConfig()
	fs := flag.NewFlagSet("wsreactor", flag.ContinueOnError)
	var (
		addr        = fs.String("addr", def.ListenAddr, "TCP listen address")
		backlog     = fs.Int("backlog", def.Backlog, "listen backlog")
		pollTimeout = fs.Duration("poll-timeout", def.PollTimeout, "upper bound of one reactor wait")
		maxEvents   = fs.Int("max-events", def.MaxEvents, "events fetched per reactor wait")
		readBuf     = fs.Int("read-buffer", def.ReadBufferSize, "socket read scratch size in bytes")
		maxPayload  = fs.Int64("max-payload", def.MaxFramePayload, "largest accepted frame payload in bytes")
		reply       = fs.String("reply", def.TextReply, "payload sent in answer to every text frame")
		logRate     = fs.Float64("log-rate", def.LogRate, "connection error log lines per second (0 = unlimited)")
		logBurst    = fs.Int("log-burst", def.LogBurst, "connection error log burst")
		metricsAddr = fs.String("metrics-addr", "", "serve Prometheus metrics on this address (disabled when empty)")
		dev         = fs.Bool("dev", false, "human readable debug logging")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("WSREACTOR")); err != nil {
		return err
	}

	log, err := newLogger(*dev)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := control.NewMetrics(reg)

	cfg := &server.Config{
		ListenAddr:      *addr,
		Backlog:         *backlog,
		PollTimeout:     *pollTimeout,
		MaxEvents:       *maxEvents,
		ReadBufferSize:  *readBuf,
		MaxFramePayload: *maxPayload,
		TextReply:       *reply,
		LogRate:         *logRate,
		LogBurst:        *logBurst,
	}
	srv, err := server.New(cfg, server.WithLogger(log), server.WithMetrics(metrics))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *metricsAddr != "" {
		hs := &http.Server{
			Addr:              *metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("metrics endpoint", zap.String("addr", *metricsAddr))
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics endpoint failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			hs.Shutdown(shutdownCtx)
		}()
	}

	if err := srv.Serve(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
