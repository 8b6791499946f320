// Package app wires the services behind the desktop bindings
package app

import (
	"github.com/textilsur/gestiontextil/desktop/internal/audit"
	"github.com/textilsur/gestiontextil/desktop/internal/auth"
	"github.com/textilsur/gestiontextil/desktop/internal/caja"
	"github.com/textilsur/gestiontextil/desktop/internal/cheques"
	"github.com/textilsur/gestiontextil/desktop/internal/config"
	"github.com/textilsur/gestiontextil/desktop/internal/cuentacorriente"
	"github.com/textilsur/gestiontextil/desktop/internal/database"
	"github.com/textilsur/gestiontextil/desktop/internal/documents"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
	"github.com/textilsur/gestiontextil/desktop/internal/export"
	"github.com/textilsur/gestiontextil/desktop/internal/importer"
	"github.com/textilsur/gestiontextil/desktop/internal/logger"
	"github.com/textilsur/gestiontextil/desktop/internal/pdf"
	"github.com/textilsur/gestiontextil/desktop/internal/reconciliation"
	"github.com/textilsur/gestiontextil/desktop/internal/statement"
)

// Services contains all application services
type Services struct {
	DB     *database.DB
	Config *config.Config
	Logger *logger.Service
	Guard  *auth.Guard
	PDF    *pdf.Writer

	// Ledgers
	Entities *entities.Service
	Caja     *caja.Service
	Cheques  *cheques.Service
	CC       *cuentacorriente.Service

	// Operations built on the ledgers
	Documents      *documents.Service
	Statements     *statement.Service
	Reconciliation *reconciliation.Service
	Importer       *importer.Service
	Export         *export.Service
	Audit          *audit.Service
}

// NewServices creates and initializes all services
func NewServices(db *database.DB, cfg *config.Config) *Services {
	writer := pdf.NewWriter(pdf.CompanyInfo{Name: cfg.PDF.CompanyName})

	ents := entities.NewService(db)
	cajaSvc := caja.NewService(db)
	chequesSvc := cheques.NewService(db)
	cc := cuentacorriente.NewService(db, cajaSvc)
	recon := reconciliation.NewService(chequesSvc, cajaSvc, cc, ents, writer, reconciliation.Options{
		ReissuePDF: cfg.Reconciliation.ReissuePDF,
		OutputDir:  cfg.PDF.OutputDir,
	})

	return &Services{
		DB:     db,
		Config: cfg,
		Logger: logger.NewService(cfg.Log.Debug),
		Guard:  auth.NewGuard(cfg.Security.DeletePINHash),
		PDF:    writer,

		Entities: ents,
		Caja:     cajaSvc,
		Cheques:  chequesSvc,
		CC:       cc,

		Documents:      documents.NewService(db, cc, chequesSvc, ents, writer, cfg.PDF.Branch),
		Statements:     statement.NewService(cc, ents, writer),
		Reconciliation: recon,
		Importer:       importer.NewService(cc),
		Export:         export.NewService(cajaSvc, cc),
		Audit:          audit.NewService(db, chequesSvc, cajaSvc),
	}
}

// ApplyConfig pushes saved settings into the running services
func (s *Services) ApplyConfig(cfg *config.Config) {
	s.Config = cfg
	s.Guard.SetHash(cfg.Security.DeletePINHash)
	s.PDF.Company.Name = cfg.PDF.CompanyName
	s.Logger.SetDebugMode(cfg.Log.Debug)
}

// Cleanup closes the database
func (s *Services) Cleanup() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
