// Command waked runs the wakesync alarm daemon standalone: it arms a
// timer for every stored alarm, replays missed ones on startup, and
// serves the framed command socket plus the optional WebSocket RPC
// endpoint.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/wakesync/wakesync/common"
	"github.com/wakesync/wakesync/internal/api"
	"github.com/wakesync/wakesync/internal/daemon"
	"github.com/wakesync/wakesync/internal/server"
	"github.com/wakesync/wakesync/pkg/alarmlib"
	"github.com/wakesync/wakesync/pkg/logger"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Println("waked:", err.Error())
		os.Exit(1)
	}
}

func run() error {
	l := logger.NewStandardLogger(log.Default())
	defer l.Close()

	dbPath := os.Getenv(common.DBPathEnv)
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "waked.db")
	}

	var sqlStore *alarmlib.SQLiteStore
	store, err := alarmlib.OpenSQLiteStore(dbPath)
	if err != nil {
		l.Error("opening schedule store %s: %v, running memory-only", dbPath, err)
	} else {
		sqlStore = store
	}
	var engineStore alarmlib.Store = sqlStore
	if sqlStore == nil {
		engineStore = alarmlib.NewMemStore()
	}

	engine := alarmlib.NewEngine(l, engineStore, nil)
	pool := server.NewPool(l)
	engine.SetClients(pool)

	var (
		ws       *server.WebServer
		notifier *server.RPCNotifier
	)
	if secret := os.Getenv(common.RPCSecretEnv); secret != "" {
		cfg := &server.RPCConfig{
			Secret:  secret,
			Port:    envPort(common.WSPortEnv, 6231),
			Version: version,
		}
		notifier = server.NewRPCNotifier(l)
		ws = server.NewWebServer(l, server.NewRPCServer(cfg, engine), notifier, cfg)
	}
	engine.SetBroadcaster(server.NewBroadcast(pool, notifier))

	if err := engine.Initialize(); err != nil {
		return err
	}

	serv := server.NewServer(l, pool, ws, envPort(common.TCPPortEnv, common.DefaultTCPPort))
	a := api.NewApi(l, engine, nil, version)
	a.RegisterHandlers(serv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := daemon.New(&daemon.Config{
		Port:            0,
		DataDir:         filepath.Dir(dbPath),
		ShutdownTimeout: 10 * time.Second,
	}, &daemon.Dependencies{
		ShutdownFunc: func() error {
			var result *multierror.Error
			result = multierror.Append(result, serv.Shutdown())
			engine.Shutdown()
			if sqlStore != nil {
				result = multierror.Append(result, sqlStore.Close())
			}
			return result.ErrorOrNil()
		},
	})

	servErr := make(chan error, 1)
	go func() {
		servErr <- serv.Start(ctx)
	}()

	// The runner gets its own context so a signal drives shutdown
	// through Shutdown (and its cleanup function) rather than by
	// cancelling the runner out from under it.
	runnerErr := make(chan error, 1)
	go func() {
		runnerErr <- runner.Start(context.Background())
	}()

	var startErr error
	select {
	case startErr = <-servErr:
	case <-ctx.Done():
	}

	if err := runner.Shutdown(); err != nil && err != daemon.ErrNotRunning {
		l.Error("shutdown: %v", err)
	}
	<-runnerErr
	return startErr
}

func envPort(key string, def int) int {
	if port := os.Getenv(key); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p >= 1 && p <= 65535 {
			return p
		}
	}
	return def
}
