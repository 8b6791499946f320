package cheques

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textilsur/gestiontextil/desktop/internal/database/dbtest"
	"github.com/textilsur/gestiontextil/desktop/internal/receipts"
)

func TestIsInPortfolio(t *testing.T) {
	tests := []struct {
		estado string
		want   bool
	}{
		{"en_cartera", true},
		{"En Cartera", true},
		{"en-cartera", true},
		{" CARTERA ", true},
		{"depositado", false},
		{"endosado", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsInPortfolio(tt.estado), tt.estado)
	}
}

func TestAddDefaults(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	id, err := svc.Add(ctx, Cheque{Numero: "12345678", Banco: "Nación", Importe: 1500.456, FechaCobro: "2026-11-30"})
	require.NoError(t, err)

	c, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, EstadoEnCartera, c.Estado)
	assert.Equal(t, "1", c.Cuenta)
	assert.InDelta(t, 1500.46, c.Importe, 0.0001)
	assert.NotEmpty(t, c.FechaEstado)

	_, err = svc.Add(ctx, Cheque{Numero: "", Importe: 10})
	assert.Error(t, err)
}

func TestEditOnlyInPortfolio(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	id, err := svc.Add(ctx, Cheque{Numero: "1", Banco: "Galicia", Importe: 100})
	require.NoError(t, err)

	amount := 250.0
	banco := "Macro"
	require.NoError(t, svc.Edit(ctx, id, Changes{Importe: &amount, Banco: &banco}))
	c, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 250.0, c.Importe)
	assert.Equal(t, "Macro", c.Banco)

	require.NoError(t, svc.ChangeState(ctx, id, StateChange{Estado: EstadoDepositado, Fecha: "01/12/2026", CuentaBanco: "CC 123", GastosBancarios: 12.5}))
	err = svc.Edit(ctx, id, Changes{Importe: &amount})
	assert.ErrorIs(t, err, ErrNotInPortfolio)

	c, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2026-12-01", c.FechaEstado)
	assert.Equal(t, "CC 123", c.CuentaBanco)
}

func TestChangeStateEndorseNeedsSupplier(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	id, err := svc.Add(ctx, Cheque{Numero: "2", Importe: 100})
	require.NoError(t, err)

	assert.Error(t, svc.ChangeState(ctx, id, StateChange{Estado: EstadoEndosado}))
	require.NoError(t, svc.ChangeState(ctx, id, StateChange{Estado: EstadoEndosado, ProveedorID: 7}))
	assert.ErrorIs(t, svc.ChangeState(ctx, 999, StateChange{Estado: EstadoRechazado}), ErrNotFound)

	inPortfolio, err := svc.ListInPortfolio(ctx)
	require.NoError(t, err)
	assert.Empty(t, inPortfolio)
}

func TestTagDocument(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	id, err := svc.Add(ctx, Cheque{Numero: "3", Importe: 100, Obs: "cobrado en mostrador"})
	require.NoError(t, err)

	require.NoError(t, svc.TagDocument(ctx, id, receipts.Receipt, "0001-00000049"))
	require.NoError(t, svc.TagDocument(ctx, id, receipts.Receipt, "0001-00000049"))

	c, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "cobrado en mostrador | REC 0001-00000049", c.Obs)
	assert.Equal(t, "0001-00000049", c.ReciboNro)

	require.NoError(t, svc.TagDocument(ctx, id, receipts.PaymentOrder, "0001-00000003"))
	c, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "cobrado en mostrador | REC 0001-00000049 | OP 0001-00000003", c.Obs)
	assert.Equal(t, "0001-00000049", c.ReciboNro)
}

func TestSetCajaLinkAndListByCaja(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	a, err := svc.Add(ctx, Cheque{Numero: "10", Importe: 1})
	require.NoError(t, err)
	_, err = svc.Add(ctx, Cheque{Numero: "11", Importe: 1})
	require.NoError(t, err)

	require.NoError(t, svc.SetCajaLink(ctx, a, 42))
	linked, err := svc.ListByCaja(ctx, 42)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, a, linked[0].ID)

	require.NoError(t, svc.SetCajaLink(ctx, a, 0))
	linked, err = svc.ListByCaja(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, linked)
}
