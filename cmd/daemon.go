package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli"

	ccommon "github.com/wakesync/wakesync/common"

	"github.com/wakesync/wakesync/cmd/common"
	"github.com/wakesync/wakesync/internal/api"
	"github.com/wakesync/wakesync/internal/server"
	"github.com/wakesync/wakesync/pkg/alarmlib"
	"github.com/wakesync/wakesync/pkg/logger"
)

var (
	daemonPort   int
	daemonWSPort int
	daemonDBPath string

	daemonFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "port, p",
			Usage:       "TCP fallback port for the command socket",
			Value:       ccommon.DefaultTCPPort,
			Destination: &daemonPort,
		},
		cli.IntFlag{
			Name:        "ws-port",
			Usage:       "port for the WebSocket RPC endpoint",
			Value:       6231,
			Destination: &daemonWSPort,
		},
		cli.StringFlag{
			Name:        "db",
			Usage:       "path to the schedule database",
			Destination: &daemonDBPath,
		},
	}
)

func daemon(ctx *cli.Context) error {
	l := logger.NewStandardLogger(log.Default())
	defer l.Close()

	store, sqlStore := openStore(l)
	engine := alarmlib.NewEngine(l, store, nil)

	pool := server.NewPool(l)
	engine.SetClients(pool)

	var (
		ws       *server.WebServer
		notifier *server.RPCNotifier
	)
	if secret := os.Getenv(ccommon.RPCSecretEnv); secret != "" {
		cfg := &server.RPCConfig{
			Secret:  secret,
			Port:    wsPort(),
			Version: ctx.App.Version,
		}
		notifier = server.NewRPCNotifier(l)
		ws = server.NewWebServer(l, server.NewRPCServer(cfg, engine), notifier, cfg)
	}
	engine.SetBroadcaster(server.NewBroadcast(pool, notifier))

	if err := engine.Initialize(); err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "engine_init", err)
		return nil
	}

	serv := server.NewServer(l, pool, ws, daemonPort)
	a := api.NewApi(l, engine, nil, ctx.App.Version)
	a.RegisterHandlers(serv)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := serv.Start(runCtx)

	var result *multierror.Error
	result = multierror.Append(result, err)
	engine.Shutdown()
	if sqlStore != nil {
		result = multierror.Append(result, sqlStore.Close())
	}
	if err := result.ErrorOrNil(); err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "shutdown", err)
	}
	return nil
}

// openStore opens the SQLite schedule store, falling back to a
// memory-only store when the database cannot be opened. The daemon
// still runs in the fallback case; schedules just do not survive a
// restart.
func openStore(l logger.Logger) (alarmlib.Store, *alarmlib.SQLiteStore) {
	path := daemonDBPath
	if path == "" {
		path = os.Getenv(ccommon.DBPathEnv)
	}
	if path == "" {
		path = filepath.Join(os.TempDir(), "waked.db")
	}
	s, err := alarmlib.OpenSQLiteStore(path)
	if err != nil {
		l.Error("opening schedule store %s: %v, running memory-only", path, err)
		return alarmlib.NewMemStore(), nil
	}
	return s, s
}

func wsPort() int {
	if port := os.Getenv(ccommon.WSPortEnv); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p >= 1 && p <= 65535 {
			return p
		}
	}
	return daemonWSPort
}
