package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/textilsur/gestiontextil/desktop/internal/auth"
	"github.com/textilsur/gestiontextil/desktop/internal/caja"
	"github.com/textilsur/gestiontextil/desktop/internal/common"
	"github.com/textilsur/gestiontextil/desktop/internal/config"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
	"github.com/textilsur/gestiontextil/desktop/internal/importer"
	"github.com/textilsur/gestiontextil/desktop/internal/logger"
	"github.com/textilsur/gestiontextil/desktop/internal/reconciliation"
)

// ============================================================================
// IMPORT / EXPORT API
// ============================================================================

// ExportCajaXLSX writes the filtered cash movements to a spreadsheet
func (a *App) ExportCajaXLSX(filter caja.Filter) (resp common.StandardResponse) {
	defer recoverResponse("ExportCajaXLSX", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	path := a.outputPath(fmt.Sprintf("caja_%s.xlsx", common.Today()))
	n, err := a.Services.Export.Caja(a.ctx, path, filter)
	if err != nil {
		return common.ErrorResponse(err)
	}
	return common.StandardResponse{
		Success: true,
		Data:    map[string]interface{}{"path": path, "rows": n},
		Message: fmt.Sprintf("%d movimientos exportados", n),
	}
}

// ExportCCXLSX writes the lines of one entity to a spreadsheet
func (a *App) ExportCCXLSX(kind string, id int64, cuenta int) (resp common.StandardResponse) {
	defer recoverResponse("ExportCCXLSX", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	k, err := entities.ParseKind(kind)
	if err != nil {
		return common.ErrorResponse(err)
	}
	path := a.outputPath(fmt.Sprintf("cc_%s_%d_%s.xlsx", k, id, common.Today()))
	n, err := a.Services.Export.CuentaCorriente(a.ctx, path, k, id, cuenta)
	if err != nil {
		return common.ErrorResponse(err)
	}
	return common.SuccessResponse(map[string]interface{}{"path": path, "rows": n})
}

// ImportCCFile loads running-account lines from a .csv or .dbf file
func (a *App) ImportCCFile(kind string, cuenta int, path string, defaultEntity int64) (resp common.StandardResponse) {
	defer recoverResponse("ImportCCFile", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	k, err := entities.ParseKind(kind)
	if err != nil {
		return common.ErrorResponse(err)
	}

	var report *importer.Report
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dbf":
		report, err = a.Services.Importer.ImportDBF(a.ctx, k, cuenta, path, defaultEntity)
	case ".csv", ".txt":
		f, ferr := os.Open(path)
		if ferr != nil {
			return common.ErrorResponse(fmt.Errorf("failed to open %s: %w", path, ferr))
		}
		defer f.Close()
		report, err = a.Services.Importer.ImportCSV(a.ctx, k, cuenta, f, defaultEntity)
	default:
		return common.ErrorResponse(fmt.Errorf("unsupported file type %q", filepath.Ext(path)))
	}
	if err != nil {
		return common.ErrorResponse(err)
	}

	a.notify(reconciliation.EventCC)
	return common.StandardResponse{
		Success: len(report.Errors) == 0,
		Data:    report,
		Message: fmt.Sprintf("%d importados, %d omitidos, %d errores", report.Imported, report.Skipped, len(report.Errors)),
	}
}

// ============================================================================
// AUDIT & MAINTENANCE API
// ============================================================================

// RunAudit checks receipt groups and duplicate checks
func (a *App) RunAudit() (resp common.StandardResponse) {
	defer recoverResponse("RunAudit", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	groups, err := a.Services.Audit.ReceiptGroupAnomalies(a.ctx)
	if err != nil {
		return common.ErrorResponse(err)
	}
	duplicates, err := a.Services.Audit.DuplicateChecks(a.ctx)
	if err != nil {
		return common.ErrorResponse(err)
	}
	return common.SuccessResponse(map[string]interface{}{
		"receiptGroups":   groups,
		"duplicateChecks": duplicates,
	})
}

// BackupDatabase writes a copy of the database into the backup directory
func (a *App) BackupDatabase() (resp common.StandardResponse) {
	defer recoverResponse("BackupDatabase", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	path, err := a.Services.DB.Backup(a.ctx, a.Services.Config.Backup.Dir)
	if err != nil {
		logger.WriteError("Backup", err.Error())
		return common.ErrorResponse(err)
	}
	logger.WriteInfo("Backup", fmt.Sprintf("Backup written to %s", path))
	return common.SuccessResponse(map[string]interface{}{"path": path})
}

// ============================================================================
// SYSTEM & CONFIGURATION API
// ============================================================================

// GetConfig returns the running configuration without the PIN hash
func (a *App) GetConfig() common.StandardResponse {
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}
	cfg := *a.Services.Config
	cfg.Security.DeletePINHash = ""
	return common.SuccessResponse(map[string]interface{}{
		"config":     cfg,
		"pinEnabled": a.Services.Guard.Enabled(),
		"logPath":    logger.GetLogPath(),
	})
}

// SaveConfig stores the settings and applies them. The delete PIN is kept;
// use SetDeletePIN to change it.
func (a *App) SaveConfig(cfg config.Config) (resp common.StandardResponse) {
	defer recoverResponse("SaveConfig", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	cfg.Security = a.Services.Config.Security
	if err := config.Save(&cfg, a.configPath); err != nil {
		return common.ErrorResponse(err)
	}
	a.Services.ApplyConfig(&cfg)
	return common.MessageResponse(true, "Configuración guardada")
}

// SetDeletePIN replaces the delete PIN. An empty pin disables it.
func (a *App) SetDeletePIN(current, pin string) (resp common.StandardResponse) {
	defer recoverResponse("SetDeletePIN", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}
	if err := a.Services.Guard.Check(current); err != nil {
		return common.ErrorResponse(err)
	}

	cfg := *a.Services.Config
	cfg.Security.DeletePINHash = ""
	if pin != "" {
		hash, err := auth.HashPIN(pin)
		if err != nil {
			return common.ErrorResponse(err)
		}
		cfg.Security.DeletePINHash = hash
	}
	if err := config.Save(&cfg, a.configPath); err != nil {
		return common.ErrorResponse(err)
	}
	a.Services.ApplyConfig(&cfg)
	logger.WriteInfo("Auth", fmt.Sprintf("Delete PIN enabled: %v", pin != ""))
	return common.MessageResponse(true, "PIN actualizado")
}

// LogMessage records a message from the frontend in the application log
func (a *App) LogMessage(level, message, component string) {
	if a.Services == nil {
		logger.WriteInfo(component, message)
		return
	}
	a.Services.Logger.LogMessage(level, message, component)
}

// GetPlatform returns platform information
func (a *App) GetPlatform() map[string]interface{} {
	return map[string]interface{}{
		"platform": runtime.GOOS,
		"arch":     runtime.GOARCH,
		"version":  runtime.Version(),
	}
}
