// Drop Ceiling viewer - mirrors the installation's live state into a scene
// and serves it on a local dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-dropceiling/internal/config"
	dclog "github.com/teslashibe/go-dropceiling/internal/log"
	"github.com/teslashibe/go-dropceiling/pkg/layout"
	"github.com/teslashibe/go-dropceiling/pkg/scene"
	"github.com/teslashibe/go-dropceiling/pkg/stream"
	"github.com/teslashibe/go-dropceiling/pkg/trends"
	"github.com/teslashibe/go-dropceiling/pkg/viewer"
	"github.com/teslashibe/go-dropceiling/pkg/web"
)

type options struct {
	layout   layout.Config
	port     string
	logLevel string
}

func main() {
	opts := parseFlags()

	dclog.Init(opts.logLevel)
	logger := dclog.L()

	graph := scene.NewGraph()
	panel := trends.NewPanel(trends.DefaultOptions())
	upstream := stream.New(stream.Config{
		ReconnectDelay: opts.layout.ReconnectDelay,
		Logger:         logger,
	})

	app, err := viewer.New(viewer.Options{
		Layout:   opts.layout,
		Engine:   graph,
		Upstream: upstream,
		Display:  panel,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dashboard := web.NewServer(web.Options{
		Port:     opts.port,
		Viewer:   app,
		Graph:    graph,
		Panel:    panel,
		Upstream: upstream,
		Logger:   logger,
	})
	dashboard.StartAsync(ctx)
	defer dashboard.Shutdown()

	fmt.Printf("🏠 Drop Ceiling viewer: %d units x %d panels\n", opts.layout.Units, opts.layout.PanelsPerUnit)
	fmt.Printf("📡 Upstream: %s\n", opts.layout.URL)

	if err := app.Run(ctx); err != nil {
		log.Fatalf("❌ Runtime error: %v", err)
	}
	dclog.Info("viewer stopped", "stats", app.Stats())
	fmt.Println("👋 Bye")
}

// parseFlags parses command line flags, then applies environment overrides
// for anything not set on the command line.
func parseFlags() options {
	layoutPath := flag.String("layout", "", "Layout bundle (YAML); overrides DROPCEILING_LAYOUT")
	url := flag.String("url", "", "Upstream websocket URL; overrides DROPCEILING_URL and the layout")
	port := flag.String("port", "", "Dashboard port; overrides DROPCEILING_PORT")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	path := *layoutPath
	if path == "" {
		path = config.LayoutFile()
	}
	cfg := layout.DefaultConfig()
	if path != "" {
		loaded, err := layout.LoadFile(path)
		if err != nil {
			log.Fatalf("❌ Layout error: %v", err)
		}
		cfg = loaded
	}

	if *url != "" {
		cfg.URL = *url
	} else {
		cfg.URL = config.UpstreamURL(cfg.URL)
	}

	opts := options{layout: cfg, port: *port, logLevel: config.LogLevel("info")}
	if opts.port == "" {
		opts.port = config.ListenPort("8090")
	}
	if *debug {
		opts.logLevel = "debug"
	}
	return opts
}
