// Package cli is the interactive debug shell over the session core. It is
// also the composition root: storage, HTTP client, connectivity monitor, and
// the auth machine are wired here, once, in dependency order.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sidereal-app/sidereal/internal/client/api"
	"github.com/sidereal-app/sidereal/internal/client/auth"
	"github.com/sidereal-app/sidereal/internal/client/config"
	"github.com/sidereal-app/sidereal/internal/client/connectivity"
	"github.com/sidereal-app/sidereal/internal/client/localstate"
	"github.com/sidereal-app/sidereal/internal/client/securestore"
	"github.com/sidereal-app/sidereal/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config   *config.Config
	machine  *auth.Machine
	monitor  *connectivity.Monitor
	settings *localstate.Settings
	logger   logging.Logger
	reader   *bufio.Reader
}

// NewApp wires the whole client. Order matters only at one point: the token
// holder and expiry relay exist before the HTTP client, so the machine can be
// constructed last with everything already connected.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := localstate.InitDatabase(ctx, filepath.Join(cfg.DataDir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("init local state: %w", err)
	}
	settings := localstate.NewSettings(localstate.NewSQLiteRepository(db))

	deviceID, err := settings.DeviceID(ctx)
	if err != nil {
		return nil, err
	}

	store, err := securestore.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init credential store: %w", err)
	}

	tokens := auth.NewTokenHolder()
	relay := auth.NewExpiryRelay()
	client := api.New(cfg.ServerBaseURL, deviceID, tokens, relay, logger).
		WithTimeout(cfg.RequestTimeout)

	monitor := connectivity.NewMonitor(client, cfg.ProbeInterval, cfg.RetryDelay, logger)

	machine := auth.NewMachine(auth.Deps{
		Backend:  client,
		Checker:  auth.NewValidator(client, logger),
		Monitor:  monitor,
		Tokens:   tokens,
		Store:    store,
		Settings: settings,
		Expiry:   relay,
		Logger:   logger,
	})

	return &App{
		config:   cfg,
		machine:  machine,
		monitor:  monitor,
		settings: settings,
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

// Run initializes the machine, starts the background watcher, and hands
// control to the REPL until EOF or exit.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	snap := a.machine.Initialize(ctx)
	fmt.Printf("Welcome to Sidereal (type 'help' for commands)\n")
	printSnapshot(snap)

	go a.monitor.Watch(ctx)

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) status() string {
	snap := a.machine.Snapshot()
	conn := "offline"
	if a.monitor.Status().Connected {
		conn = "online"
	}
	if snap.Tier == auth.TierNone {
		return fmt.Sprintf("(%s %s)", snap.Mode, conn)
	}
	return fmt.Sprintf("(%s %s %s)", snap.Mode, snap.Tier, conn)
}

func printSnapshot(snap auth.Snapshot) {
	fmt.Printf("mode=%s tier=%s token=%v", snap.Mode, snap.Tier, snap.HasToken)
	if snap.User != nil {
		fmt.Printf(" user=%s", snap.User.ID)
	}
	fmt.Println()
}
