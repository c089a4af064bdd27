// Package main starts the padrelay control process.
package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/frudas24/padrelay/internal/config"
	"github.com/frudas24/padrelay/internal/relay"
	"github.com/frudas24/padrelay/internal/web"
)

// run wires the relay client and the web server and blocks until shutdown.
func run(debug bool) error {
	cfg, err := config.LoadWeb()
	if err != nil {
		return err
	}
	if debug {
		log.Printf("debug: enabled")
	}

	client := relay.NewClient(cfg.RelayAddr())
	client.Start()
	defer client.Stop()

	webServer := web.NewServer(cfg, client)
	mux := http.NewServeMux()
	webServer.RegisterRoutes(mux)

	server := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: mux,
	}
	logStartup(cfg)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// logFatal prints and exits for startup failures.
func logFatal(err error) {
	log.Printf("fatal: %v", err)
	os.Exit(1)
}

// logStartup prints connection info for LAN setup.
func logStartup(cfg config.Web) {
	note := " (token enabled)"
	if cfg.Token == "" {
		note = " (token disabled)"
	}
	log.Printf("web ui: http://%s/%s", displayAddr(cfg.ListenAddr()), note)
	log.Printf("lan (guess): http://%s/", net.JoinHostPort(web.GuessLANIP(), portOf(cfg.ListenAddr())))
	log.Printf("relay host: %s", cfg.RelayAddr())
	if cfg.Token == "" {
		log.Printf("WARNING: PADRELAY_TOKEN is not set; anyone on your LAN can control this PC if they find the URL")
	}
	log.Printf("run the host process in another terminal for input injection")
}

// displayAddr rewrites wildcard binds to a browsable host.
func displayAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

// portOf extracts the port from host:port, empty on parse failure.
func portOf(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return ""
	}
	return port
}
