// Package main provides the Wails desktop application entry point and API endpoints.
// This file acts as a thin wrapper, delegating all business logic to the
// services wired in internal/app.
//
// Organization:
//   - main.go: App lifecycle and Wails integration
//   - api_caja.go: cash ledger
//   - api_cheques.go: checks and reconciliation triggers
//   - api_cc.go: running accounts, documents and statements
//   - api_system.go: import/export, audit, backup and settings
package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/textilsur/gestiontextil/desktop/internal/app"
	"github.com/textilsur/gestiontextil/desktop/internal/common"
	"github.com/textilsur/gestiontextil/desktop/internal/config"
	"github.com/textilsur/gestiontextil/desktop/internal/database"
	"github.com/textilsur/gestiontextil/desktop/internal/logger"
)

//go:embed all:frontend/dist
var assets embed.FS

// ledgerChangedEvent is the frontend event name carrying "caja", "cheques" or "cc"
const ledgerChangedEvent = "ledger:changed"

// ============================================================================
// APP STRUCTURE AND INITIALIZATION
// ============================================================================

// App holds the Wails context and the wired services. Every exported method
// is bound to the frontend.
type App struct {
	ctx        context.Context
	configPath string
	startupErr error

	Services *app.Services
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{}
}

// wailsNotifier forwards ledger changes to the frontend so open screens can refresh
type wailsNotifier struct {
	ctx context.Context
}

func (n wailsNotifier) LedgerChanged(event string) {
	runtime.EventsEmit(n.ctx, ledgerChangedEvent, event)
}

// ============================================================================
// APP LIFECYCLE METHODS
// ============================================================================

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	if err := a.init(ctx); err != nil {
		a.startupErr = err
		logger.WriteError("App", fmt.Sprintf("Startup failed: %v", err))
		return
	}
	logger.WriteInfo("App", "Application started")
}

func (a *App) init(ctx context.Context) error {
	path, err := config.DefaultPath()
	if err != nil {
		return err
	}
	a.configPath = path

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if err := logger.Initialize(logger.Options{Dir: cfg.Log.Dir, KeepDays: cfg.Log.KeepDays, Debug: cfg.Log.Debug}); err != nil {
		// console logging still works
		fmt.Printf("Failed to initialize logging: %v\n", err)
	}
	logger.WriteInfo("App", fmt.Sprintf("Config: %s, database: %s", path, cfg.Database.Path))

	db, err := database.OpenAndInit(ctx, cfg.Database.Path, cfg.Database.BusyTimeoutMS)
	if err != nil {
		return err
	}

	a.Services = app.NewServices(db, cfg)
	a.Services.Reconciliation.SetNotifier(wailsNotifier{ctx: ctx})
	return nil
}

// shutdown closes the database and flushes the log file
func (a *App) shutdown(ctx context.Context) {
	defer logger.RecoverPanic("Shutdown")
	if a.Services != nil {
		if err := a.Services.Cleanup(); err != nil {
			logger.WriteError("App", fmt.Sprintf("Failed to close database: %v", err))
		}
	}
	logger.WriteInfo("App", "Application stopped")
	logger.Close()
}

// ============================================================================
// STANDARDIZED HELPER FUNCTIONS
// ============================================================================

// requireServices reports why the bindings cannot run yet
func (a *App) requireServices() error {
	if a.startupErr != nil {
		return fmt.Errorf("application failed to start: %w", a.startupErr)
	}
	if a.Services == nil {
		return fmt.Errorf("application is still starting")
	}
	return nil
}

// recoverResponse logs a panic raised inside a binding and replaces the
// response so the frontend still receives an error message. Defer it
// directly with the binding's named result.
func recoverResponse(module string, resp *common.StandardResponse) {
	if r := recover(); r != nil {
		logger.WriteCrash(module, r, debug.Stack())
		*resp = common.StandardResponse{Success: false, Error: "internal error"}
	}
}

// respond maps a service result to the frontend response shape
func respond(data interface{}, err error) common.StandardResponse {
	if err != nil {
		return common.ErrorResponse(err)
	}
	return common.SuccessResponse(data)
}

// notify tells the frontend that a ledger changed outside the reconciliation engine
func (a *App) notify(events ...string) {
	if a.ctx == nil {
		return
	}
	for _, e := range events {
		runtime.EventsEmit(a.ctx, ledgerChangedEvent, e)
	}
}

// outputPath places a generated file under the configured PDF directory
func (a *App) outputPath(name string) string {
	return filepath.Join(a.Services.Config.PDF.OutputDir, name)
}

// ============================================================================
// MAIN
// ============================================================================

func main() {
	exePath, _ := os.Executable()
	startupLog := filepath.Join(filepath.Dir(exePath), "startup.log")

	defer logger.Close()

	// Set up global panic recovery
	defer func() {
		if r := recover(); r != nil {
			panicMsg := fmt.Sprintf("[%s] PANIC in main: %v\n", time.Now().Format("2006-01-02 15:04:05"), r)
			if f, err := os.OpenFile(startupLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
				f.WriteString(panicMsg)
				f.Close()
			}
			logger.WriteCrash("main", r, nil)
		}
	}()

	app := NewApp()

	err := wails.Run(&options.App{
		Title:  "Gestión Textil",
		Width:  1280,
		Height: 860,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		logger.WriteError("Main", fmt.Sprintf("Wails error: %v", err))
		fmt.Printf("Error: %v\n", err)
	}
}
