package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/malbeclabs/stopandwait/internal/netx"
	"github.com/malbeclabs/stopandwait/internal/tx"
	"github.com/malbeclabs/stopandwait/internal/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var (
		filePath    = flag.String("file", "", "path of the file to transfer (required)")
		dataSize    = flag.Int("data-size", 3840, "per-frame data capacity in bytes, multiple of 8")
		timeoutMs   = flag.Int("timeout-ms", 30, "ACK wait in milliseconds before retransmitting")
		bep         = flag.Float64("bep", 0, "simulated bit error probability per transmitted bit")
		rxIP        = flag.String("rx-ip", "", "receiver IPv4; empty discovers the receiver by broadcast")
		rxPort      = flag.String("rx-port", getenv("STOPANDWAIT_RX_PORT", wire.RXPort), "receiver UDP port")
		txPort      = flag.String("tx-port", getenv("STOPANDWAIT_TX_PORT", wire.TXPort), "local UDP port to bind")
		metricsAddr = flag.String("metrics-addr", "", "prometheus listen address; empty disables metrics")
		verbose     = flag.BoolP("verbose", "v", false, "enable debug logging")
		showVersion = flag.Bool("version", false, "print build version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s, commit: %s\n", version, commit)
		return nil
	}

	log := newLogger(*verbose)

	if *filePath == "" {
		return fmt.Errorf("--file is required")
	}
	data, err := os.ReadFile(*filePath)
	if err != nil {
		return fmt.Errorf("read input file: %w", err)
	}

	conn, err := netx.Bind(*txPort)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Info("bound local socket", "address", conn.LocalAddr())

	if *metricsAddr != "" {
		go serveMetrics(log, *metricsAddr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := &tx.Config{
		Logger:   log,
		Conn:     conn,
		Data:     data,
		Filename: filepath.Base(*filePath),
		Channel:  wire.NewChannel(*bep, nil),
		DataSize: *dataSize,
		Timeout:  time.Duration(*timeoutMs) * time.Millisecond,
		RXPort:   *rxPort,
	}
	if *rxIP != "" {
		peer := net.ParseIP(*rxIP)
		if peer == nil {
			return fmt.Errorf("invalid --rx-ip %q", *rxIP)
		}
		cfg.PeerIP = peer
	}

	sender, err := tx.New(cfg)
	if err != nil {
		return err
	}
	stats, err := sender.Run(ctx)
	if err != nil {
		return fmt.Errorf("transfer failed: %w", err)
	}
	stats.Render(os.Stdout)
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
}

func serveMetrics(log *slog.Logger, addr string) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("failed to start prometheus metrics listener", "error", err)
		return
	}
	log.Info("prometheus metrics listening", "address", listener.Addr().String())
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.Serve(listener, mux); err != nil {
		log.Error("prometheus metrics server stopped", "error", err)
	}
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
