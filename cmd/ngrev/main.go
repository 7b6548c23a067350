package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chauey/ngrev/internal/bridge"
	"github.com/chauey/ngrev/internal/command"
	"github.com/chauey/ngrev/internal/config"
	"github.com/chauey/ngrev/internal/db"
	"github.com/chauey/ngrev/internal/global"
	"github.com/chauey/ngrev/internal/historydb"
	"github.com/chauey/ngrev/internal/lifecycle"
	"github.com/chauey/ngrev/internal/logging"
	"github.com/chauey/ngrev/internal/menu"
	"github.com/chauey/ngrev/internal/parser"
	"github.com/chauey/ngrev/internal/projectstate"
	"github.com/chauey/ngrev/internal/protocol"
	"github.com/chauey/ngrev/internal/taskqueue"
	"github.com/chauey/ngrev/internal/uiserver"

	toml "github.com/pelletier/go-toml/v2"
)

var version = "dev"
var buildTime = "unknown"

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := command.BuildApp(command.Deps{
		LoadConfig: loadHostConfig,
		RunServe: func(ctx context.Context, cfg config.Config) error {
			return runServe(ctx, os.Stdout, cfg)
		},
		ListRecents:  runRecentsList,
		ClearRecents: runRecentsClear,
		ShowConfig:   showConfig,
	})
	if err := app.RunContext(rootCtx, os.Args); err != nil {
		_, _ = io.WriteString(os.Stderr, err.Error()+"\n")
		os.Exit(1)
	}
}

func loadHostConfig() (config.Config, error) {
	dir, err := global.DefaultConfigDir()
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(dir)
}

func newHostLogger(cfg config.Config, component string) *slog.Logger {
	return logging.NewLogger(logging.Options{
		Level:     cfg.LogLevel,
		Path:      cfg.LogPath,
		Component: component,
	})
}

// runServe spawns the worker, wires queue, router and the UI channel,
// and blocks until the context ends or a run job fails.
func runServe(ctx context.Context, out io.Writer, cfg config.Config) error {
	logger := newHostLogger(cfg, "host")

	gdb, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	projects, err := historydb.NewStore(gdb)
	if err != nil {
		_ = db.Close(gdb)
		return err
	}

	proc, err := parser.Spawn(ctx, parser.SpawnOptions{
		Bin:       cfg.ParserBin,
		Logger:    newHostLogger(cfg, "parser"),
		TraceWire: cfg.TraceWire,
	})
	if err != nil {
		_ = db.Close(gdb)
		return err
	}

	queue := taskqueue.New(ctx, newHostLogger(cfg, "taskqueue"))
	exportMenu := menu.NewExportMenu(newHostLogger(cfg, "menu"))
	history := projectstate.NewHistory()

	router := bridge.NewRouter(queue, proc, exportMenu, newHostLogger(cfg, "bridge"))
	router.SetHistory(history)
	router.SetProjects(projects)
	router.SetUIConfig(protocol.MustRaw(cfg.UI))

	server := uiserver.NewServer(router, newHostLogger(cfg, "uiserver"))
	exportMenu.OnChange(func(enabled bool) {
		server.Hub().Publish("menu.export", map[string]any{"enabled": enabled})
	})

	addr := fmt.Sprintf("%s:%d", cfg.ListenHost, cfg.ListenPort)
	fmt.Fprintf(out, "ngrev host listening at ws://%s/ws (version=%s built=%s)\n", addr, version, buildTime)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Handler(),
	}

	mgr := lifecycle.NewManager()
	mgr.AddRun("ui-server", func(runCtx context.Context) error {
		go func() {
			<-runCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}()
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	mgr.AddRun("parser-watch", func(runCtx context.Context) error {
		select {
		case <-runCtx.Done():
			return nil
		case <-proc.Done():
		}
		// Worker exit is advisory: tell the UI and keep serving, later
		// sends fail at the channel and surface as queue task failures.
		payload := map[string]any{}
		if exitErr := proc.Err(); exitErr != nil {
			payload["err"] = exitErr.Error()
		}
		server.Hub().Publish("parser.exited", payload)
		logger.Warn("analysis worker exited, commands will fail until restart")
		<-runCtx.Done()
		return nil
	})
	mgr.AddShutdown("close-parser", func(context.Context) error {
		return proc.Close()
	})
	mgr.AddShutdown("close-db", func(context.Context) error {
		return db.Close(gdb)
	})
	return mgr.StartAndWait(ctx)
}

func runRecentsList(_ context.Context, cfg config.Config, out io.Writer) error {
	gdb, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(gdb) }()
	store, err := historydb.NewStore(gdb)
	if err != nil {
		return err
	}
	entries, err := store.List(20)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "no recent projects")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\topened %d time(s), last %s\n",
			e.Tsconfig, e.OpenCount, e.LastOpened.Format(time.RFC3339))
	}
	return nil
}

func runRecentsClear(_ context.Context, cfg config.Config) error {
	gdb, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(gdb) }()
	store, err := historydb.NewStore(gdb)
	if err != nil {
		return err
	}
	return store.Clear()
}

func showConfig(cfg config.Config, out io.Writer) error {
	b, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = out.Write(b)
	return err
}
