package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh/spinner"
	"go.uber.org/zap"

	"arma3-server-manager/arma"
	"arma3-server-manager/auth"
	"arma3-server-manager/config"
	"arma3-server-manager/db"
	"arma3-server-manager/logger"
	"arma3-server-manager/optimistic"
	"arma3-server-manager/prefs"
	"arma3-server-manager/steam"
	"arma3-server-manager/store"
	"arma3-server-manager/ui"
)

// app bundles everything a command needs once configuration is loaded.
type app struct {
	cfg           config.Config
	client        *arma.Client
	mods          *store.Mods
	collections   *store.Collections
	schedules     *store.Schedules
	notifications *store.Notifications
	server        *store.Server
	prefs         *prefs.Store
	resolver      *steam.Resolver
}

// loadConfig reads configuration from path and points the logger at LOG_FILE.
func loadConfig(path string) config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fail("Load configuration", err)
	}
	logger.InitLogger(cfg.LogFile)
	return cfg
}

// openLocal loads configuration and opens the local database.
func openLocal(path string) config.Config {
	cfg := loadConfig(path)

	db.InitDatabase(cfg.DatabasePath)
	logger.Log.Infow("Database initialized", zap.String("path", cfg.DatabasePath))
	return cfg
}

// bootstrap handles shared initialization logic for commands.
func bootstrap(path string) *app {
	cfg := openLocal(path)

	token, err := auth.ResolveToken(auth.DefaultStore(), cfg.APIToken, cfg.APITarget)
	if err != nil {
		logger.Log.Warnw("Failed to read token from keychain, continuing without one", zap.Error(err))
	}

	client, err := arma.NewClient(cfg, token)
	if err != nil {
		logger.Log.Fatalw("Failed to create backend client", zap.Error(err))
	}

	return &app{
		cfg:           cfg,
		client:        client,
		mods:          store.NewMods(client, db.DB),
		collections:   store.NewCollections(client, db.DB, cfg.ReorderDebounce()),
		schedules:     store.NewSchedules(client, db.DB),
		notifications: store.NewNotifications(client, db.DB),
		server:        store.NewServer(client, db.DB),
		prefs:         prefs.New(db.DB),
		resolver:      steam.NewResolver(client),
	}
}

// fail prints a user-facing message for err, logs it, and exits.
func fail(action string, err error) {
	logger.Log.Errorw(action+" failed", zap.Error(err))
	fmt.Fprintln(os.Stderr, ui.ErrorText.Render(fmt.Sprintf("%s: %s", action, errorText(err))))
	os.Exit(1)
}

// errorText prefers the backend's message and never shows a raw struct.
func errorText(err error) string {
	switch {
	case errors.Is(err, ui.ErrAborted):
		return "aborted"
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrNoActiveServer), errors.Is(err, steam.ErrNoIDs):
		return err.Error()
	}
	return arma.ErrorMessage(err)
}

// awaitResults waits for background syncs and reports each failure.
// It returns the number of failed operations.
func awaitResults(ctx context.Context, label string, results ...*optimistic.Result) int {
	failed := 0
	for _, res := range results {
		if res == nil {
			continue
		}
		if err := res.Wait(ctx); err != nil {
			failed++
			fmt.Fprintln(os.Stderr, ui.ErrorText.Render(fmt.Sprintf("%s: %s (rolled back)", label, errorText(err))))
		}
	}
	return failed
}

func parseID(kind, raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(os.Stderr, "invalid %s id %q\n", kind, raw)
		os.Exit(2)
	}
	return id
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 30 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// paginate returns the 1-based page of items and the page count.
func paginate[T any](items []T, page, perPage int) ([]T, int) {
	if perPage <= 0 {
		perPage = prefs.DefaultRowsPerPage
	}
	pages := max(1, (len(items)+perPage-1)/perPage)
	page = max(1, min(page, pages))
	start := (page - 1) * perPage
	end := min(start+perPage, len(items))
	return items[start:end], pages
}

// spin runs action behind a spinner when attached to a terminal.
func spin(title string, action func()) {
	if !ui.Interactive() {
		action()
		return
	}
	if err := spinner.New().
		Title(title).
		Accessible(os.Getenv("ACCESSIBLE") != "").
		Output(os.Stderr).
		Action(action).
		Run(); err != nil {
		logger.Log.Warnw("Spinner failed", zap.Error(err))
	}
}
