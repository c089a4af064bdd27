// Package main starts the padrelay injection process.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/frudas24/padrelay/internal/config"
	"github.com/frudas24/padrelay/internal/focus"
	"github.com/frudas24/padrelay/internal/host"
	"github.com/frudas24/padrelay/internal/kbm"
	"github.com/frudas24/padrelay/internal/mover"
	"github.com/frudas24/padrelay/internal/wininput"
	"github.com/frudas24/padrelay/internal/winman"
)

// run wires the injection devices and blocks until shutdown.
func run(debug bool) error {
	cfg, err := config.LoadHost()
	if err != nil {
		return err
	}
	if debug {
		log.Printf("debug: enabled")
	}

	injector, injErr := wininput.NewInjector()
	if injErr != nil {
		log.Printf("input injection unavailable: %v", injErr)
	}
	wm, wmErr := winman.NewManager()
	if wmErr != nil {
		log.Printf("window management unavailable: %v", wmErr)
	}

	mv := mover.New(cfg.MouseHz, cfg.MaxMovePx, func(dx, dy int) {
		injector.MoveRel(dx, dy)
	})
	mv.Start()
	defer mv.Stop()

	mapper := kbm.New(injector, mv, cfg.KbmCamSens, cfg.KbmCamSpeed)
	mapper.Start()
	defer mapper.Stop()

	tracker := focus.New(wm)
	state := host.NewDeviceState(cfg, injector, injErr, wm, mv, mapper, tracker)
	defer state.Close()

	server := host.NewServer(state)
	if err := server.Listen(cfg.ListenAddr()); err != nil {
		return err
	}
	logStartup(cfg, injErr == nil, state)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	return server.Close()
}

// logFatal prints and exits for startup failures.
func logFatal(err error) {
	log.Printf("fatal: %v", err)
	os.Exit(1)
}

// logStartup prints device availability and the listen address.
func logStartup(cfg config.Host, injected bool, state *host.DeviceState) {
	log.Printf("padrelay host listening on %s", cfg.ListenAddr())
	st := state.Snapshot()
	log.Printf("mouse=%t keyboard=%t gamepad=%t", injected, injected, st.Gamepad)
	if cfg.EnableGamepad && !st.Gamepad {
		log.Printf("gamepad not ready: %s (install the ViGEmBus driver)", st.GamepadError)
	}
	if st.Gamepad {
		log.Printf("tip: run joy.cpl to verify the virtual Xbox 360 controller exists")
	}
	log.Printf("waiting for the control process to connect")
}
