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
	"github.com/malbeclabs/stopandwait/internal/rx"
	"github.com/malbeclabs/stopandwait/internal/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
)

// fallbackFilename names the output when the transmitter announced an
// empty or unusable filename.
const fallbackFilename = "received"

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
		bep         = flag.Float64("bep", 0, "simulated bit error probability applied to outgoing ACKs")
		outDir      = flag.String("out-dir", "received", "directory to write the received file into")
		rxPort      = flag.String("rx-port", getenv("STOPANDWAIT_RX_PORT", wire.RXPort), "local UDP port to bind")
		txPort      = flag.String("tx-port", getenv("STOPANDWAIT_TX_PORT", wire.TXPort), "transmitter UDP port")
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

	conn, err := netx.Bind(*rxPort)
	if err != nil {
		return err
	}
	defer conn.Close()

	if *metricsAddr != "" {
		go serveMetrics(log, *metricsAddr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	receiver, err := rx.New(&rx.Config{
		Logger:  log,
		Conn:    conn,
		Channel: wire.NewChannel(*bep, nil),
		TXPort:  *txPort,
	})
	if err != nil {
		return err
	}
	res, err := receiver.Run(ctx)
	if err != nil {
		return fmt.Errorf("receive failed: %w", err)
	}

	// The announced filename is untrusted input: keep only its final
	// path component.
	name := filepath.Base(res.Filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = fallbackFilename
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	outPath := filepath.Join(*outDir, name)
	if err := os.WriteFile(outPath, res.Data, 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	log.Info("wrote output file", "path", outPath, "bytes", len(res.Data))

	// The file is written either way; integrity decides the exit code.
	if !res.ChecksumOK() {
		return fmt.Errorf("end-to-end checksum mismatch: received %08x, computed %08x",
			res.ReceivedChecksum, res.ComputedChecksum)
	}
	log.Info("end-to-end checksum verified", "checksum", fmt.Sprintf("%08x", res.ComputedChecksum))
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
