package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vcsh30/dahuactl/internal/api"
	"github.com/vcsh30/dahuactl/internal/bridge"
	"github.com/vcsh30/dahuactl/internal/core"
	"github.com/vcsh30/dahuactl/internal/metrics"
	"github.com/vcsh30/dahuactl/internal/tail"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the speaker bridge daemon",
	Long: `Run dahuactl as a long-lived daemon. The daemon polls the speaker,
serves a REST API with Prometheus metrics, and, when configured, bridges
the speaker to an MQTT broker with Home Assistant discovery.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	speaker, err := getSpeaker()
	if err != nil {
		return suggest(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Serve.Addr
	}

	registry := prometheus.NewRegistry()
	if err := registry.Register(metrics.NewCollector(speaker)); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	router := api.SetupRouter(api.NewAPI(speaker), metricsHandler)
	server := &http.Server{Addr: addr, Handler: router}

	interval := time.Duration(cfg.Poll.Interval) * time.Millisecond
	watcher := tail.NewWatcher(speaker, interval)

	errCh := make(chan error, 3)

	go func() {
		log.Printf("serving REST API on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("watcher: %w", err)
		}
	}()

	if cfg.MQTT.Enabled {
		go func() {
			if err := runBridge(ctx, speaker, watcher); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("mqtt bridge: %w", err)
			}
		}()
	} else {
		// Nobody else drains the events channel; log them instead.
		go func() {
			formatter := tail.NewFormatter(tail.WithEmoji(false))
			for e := range watcher.Events() {
				log.Print(formatter.Format(e))
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		stop()
		shutdownServer(server)
		return err
	}

	log.Print("shutting down")
	shutdownServer(server)
	return nil
}

// runBridge connects the MQTT bridge once the speaker's identity is
// known. The bridge topics embed the MAC address, so when the speaker is
// unreachable at startup the bridge waits for the first reachable status
// instead of announcing itself under a placeholder id.
func runBridge(ctx context.Context, speaker core.Controller, watcher *tail.Watcher) error {
	status, err := speaker.Status(ctx)
	if err != nil {
		return err
	}

	events := watcher.Events()
	if status.Device == nil {
		log.Print("mqtt: speaker identity unknown, waiting for it to come up")
	}
	for status.Device == nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if e.Current != nil && e.Current.Device != nil {
				status = e.Current
			}
		}
	}

	b, err := bridge.New(cfg.MQTT, speaker, status.Device)
	if err != nil {
		return err
	}
	log.Printf("bridging speaker to mqtt://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port)
	return b.Start(ctx, events)
}

func shutdownServer(server *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}
