// Replay - serves a recorded JSON-lines session over the installation's
// websocket protocol so the viewer can run without the hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-dropceiling/internal/config"
	dclog "github.com/teslashibe/go-dropceiling/internal/log"
	"github.com/teslashibe/go-dropceiling/pkg/replay"
)

func main() {
	file := flag.String("file", "", "JSON-lines recording, one snapshot per line (required)")
	port := flag.String("port", "", "Listen port; overrides DROPCEILING_PORT")
	interval := flag.Duration("interval", replay.DefaultInterval, "Delay between snapshots")
	loop := flag.Bool("loop", true, "Restart the recording when it ends")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	if *file == "" {
		log.Fatalf("❌ -file is required")
	}

	level := config.LogLevel("info")
	if *debug {
		level = "debug"
	}
	dclog.Init(level)

	listen := *port
	if listen == "" {
		listen = config.ListenPort("8765")
	}

	src, err := replay.LoadFile(*file)
	if err != nil {
		log.Fatalf("❌ Recording error: %v", err)
	}

	srv := replay.NewServer(src, replay.Config{
		Interval: *interval,
		Loop:     *loop,
		Logger:   dclog.L(),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(":" + listen) }()

	select {
	case err := <-errCh:
		log.Fatalf("❌ Server error: %v", err)
	case <-ctx.Done():
	}

	done := make(chan struct{})
	go func() {
		srv.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		dclog.Warn("shutdown timed out", "after", "5s")
	}
	fmt.Println("👋 Bye")
}
