package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textilsur/gestiontextil/desktop/internal/auth"
	"github.com/textilsur/gestiontextil/desktop/internal/cheques"
	"github.com/textilsur/gestiontextil/desktop/internal/config"
	"github.com/textilsur/gestiontextil/desktop/internal/database/dbtest"
	"github.com/textilsur/gestiontextil/desktop/internal/documents"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
)

func newServices(t *testing.T) *Services {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	cfg.PDF.OutputDir = t.TempDir()
	return NewServices(dbtest.New(t), cfg)
}

// a receipt issued with checks stays consistent after one of them is edited
func TestReceiptLifecycle(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	cliente, err := s.Entities.Add(ctx, entities.Entity{Kind: entities.Cliente, RazonSocial: "Hilados Norte", CUITDNI: "20-12345678-6"})
	require.NoError(t, err)

	issued, err := s.Documents.IssueReceipt(ctx, documents.ReceiptRequest{
		ClienteID: cliente,
		Cuenta:    1,
		Cheques: []cheques.Cheque{
			{Numero: "501", Banco: "Nación", Importe: 300},
			{Numero: "502", Banco: "Nación", Importe: 200},
		},
	})
	require.NoError(t, err)

	importe := 260.0
	require.NoError(t, s.Cheques.Edit(ctx, issued.ChequeIDs[0], cheques.Changes{Importe: &importe}))

	res := s.Reconciliation.ReconcileCheck(ctx, issued.ChequeIDs[0], "")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 460.0, res.Total)
	assert.FileExists(t, res.ReissuedPath)

	bal, err := s.CC.Balance(ctx, entities.Cliente, cliente, 1)
	require.NoError(t, err)
	assert.Equal(t, "-460.00", bal.ToString())

	e, err := s.Caja.Get(ctx, issued.CajaID)
	require.NoError(t, err)
	assert.Equal(t, 460.0, e.Monto)

	audit, err := s.Audit.ReceiptGroupAnomalies(ctx)
	require.NoError(t, err)
	assert.Empty(t, audit.Issues)

	out, err := s.Statements.Emit(ctx, entities.Cliente, cliente, t.TempDir())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].RowCount)
}

func TestApplyConfig(t *testing.T) {
	s := newServices(t)
	assert.False(t, s.Guard.Enabled())

	hash, err := auth.HashPIN("1234")
	require.NoError(t, err)
	cfg := *s.Config
	cfg.Security.DeletePINHash = hash
	cfg.PDF.CompanyName = "Textil Sur"
	s.ApplyConfig(&cfg)

	assert.True(t, s.Guard.Enabled())
	assert.ErrorIs(t, s.Guard.Check("0000"), auth.ErrInvalidPIN)
	assert.Equal(t, "Textil Sur", s.PDF.Company.Name)
}
