package caja

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textilsur/gestiontextil/desktop/internal/currency"
	"github.com/textilsur/gestiontextil/desktop/internal/database/dbtest"
	"github.com/textilsur/gestiontextil/desktop/internal/receipts"
)

func TestNormalizeCuenta(t *testing.T) {
	assert.Equal(t, 1, NormalizeCuenta("cuenta1"))
	assert.Equal(t, 1, NormalizeCuenta("1"))
	assert.Equal(t, 2, NormalizeCuenta("cuenta2"))
	assert.Equal(t, 2, NormalizeCuenta(""))
}

func TestAddListBalance(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	_, err := svc.Add(ctx, Entry{Fecha: "01/10/2026", Tipo: "Ingreso", Medio: "transferencia", Concepto: "venta", Monto: 1000, Cuenta: 1})
	require.NoError(t, err)
	_, err = svc.Add(ctx, Entry{Fecha: "2026-10-02", Tipo: Egreso, Medio: "efectivo", Concepto: "flete", Monto: 250.25, Cuenta: 1})
	require.NoError(t, err)
	_, err = svc.Add(ctx, Entry{Fecha: "2026-10-03", Tipo: Ingreso, Medio: "cheque", Concepto: "cobro", Monto: 500, Cuenta: 2})
	require.NoError(t, err)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2026-10-03", all[0].Fecha)
	assert.Equal(t, "banco", all[2].Medio)
	assert.Equal(t, "ok", all[2].Estado)

	c1, err := svc.List(ctx, Filter{Cuenta: 1, Desde: "2026-10-02"})
	require.NoError(t, err)
	require.Len(t, c1, 1)
	assert.Equal(t, "flete", c1[0].Concepto)

	bal, err := svc.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "749.75", bal.ToString())
	bal, err = svc.Balance(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "1249.75", bal.ToString())
}

func TestAddRejectsBadDirection(t *testing.T) {
	svc := NewService(dbtest.New(t))
	_, err := svc.Add(context.Background(), Entry{Tipo: "transfer", Monto: 1})
	assert.Error(t, err)
}

func TestManualPathRejectsSystemEntries(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	manual, err := svc.Add(ctx, Entry{Tipo: Ingreso, Monto: 10})
	require.NoError(t, err)
	system, err := svc.Add(ctx, Entry{Tipo: Ingreso, Monto: 20})
	require.NoError(t, err)
	require.NoError(t, svc.SetOrigin(ctx, system, "cc_cli", 3))

	e, err := svc.Get(ctx, manual)
	require.NoError(t, err)
	e.Monto = 15
	require.NoError(t, svc.UpdateManual(ctx, *e))

	s, err := svc.Get(ctx, system)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.UpdateManual(ctx, *s), ErrSystemGenerated)
	assert.ErrorIs(t, svc.DeleteManual(ctx, system), ErrSystemGenerated)

	require.NoError(t, svc.DeleteManual(ctx, manual))
	_, err = svc.Get(ctx, manual)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForceDeleteUnlinks(t *testing.T) {
	db := dbtest.New(t)
	svc := NewService(db)
	ctx := context.Background()

	id, err := svc.Add(ctx, Entry{Tipo: Ingreso, Monto: 100})
	require.NoError(t, err)
	dbtest.Exec(t, db,
		`INSERT INTO cheques (numero, importe, mov_caja_id) VALUES ('1', 100, 1)`,
		`INSERT INTO cc_clientes_c1 (cliente_id, doc, numero, haber, caja_mov_id) VALUES (1, 'REC', '5', 100, 1)`,
		`INSERT INTO cc_proveedores_c2 (proveedor_id, doc, numero, haber, caja_mov_id) VALUES (1, 'OP', '5', 100, 1)`,
	)
	require.Equal(t, int64(1), id)

	require.NoError(t, svc.ForceDelete(ctx, id))

	var n int
	require.NoError(t, db.GetConn().QueryRow(`SELECT COUNT(*) FROM cheques WHERE mov_caja_id IS NOT NULL`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, db.GetConn().QueryRow(`SELECT COUNT(*) FROM cc_clientes_c1 WHERE caja_mov_id IS NOT NULL`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, db.GetConn().QueryRow(`SELECT COUNT(*) FROM cc_proveedores_c2 WHERE caja_mov_id IS NOT NULL`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, db.GetConn().QueryRow(`SELECT COUNT(*) FROM movimientos_caja`).Scan(&n))
	assert.Zero(t, n)
}

func TestUpdateAmountForReceiptByReference(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	id, err := svc.Add(ctx, Entry{Tipo: Ingreso, Monto: 100, Detalle: "REC 0001-00000049"})
	require.NoError(t, err)

	out := svc.UpdateAmountForReceipt(ctx, id, receipts.Identifier{}, currency.NewFromFloat(350.5))
	assert.True(t, out.OK)
	assert.Equal(t, id, out.EntryID)

	e, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 350.5, e.Monto)
}

func TestUpdateAmountForReceiptByText(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	other, err := svc.Add(ctx, Entry{Tipo: Ingreso, Monto: 1, Detalle: "REC 0001-00000490"})
	require.NoError(t, err)
	target, err := svc.Add(ctx, Entry{Tipo: Ingreso, Monto: 100, Concepto: "Cobro REC 0001-00000049"})
	require.NoError(t, err)

	id, _ := receipts.FromHint("0001-00000049")
	out := svc.UpdateAmountForReceipt(ctx, 999, id, currency.NewFromFloat(80))
	require.True(t, out.OK, out.Reason)
	assert.Equal(t, target, out.EntryID)

	e, err := svc.Get(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 1.0, e.Monto)
}

func TestUpdateAmountForReceiptMiss(t *testing.T) {
	svc := NewService(dbtest.New(t))
	ctx := context.Background()

	out := svc.UpdateAmountForReceipt(ctx, 0, receipts.Identifier{}, currency.NewFromFloat(1))
	assert.False(t, out.OK)
	assert.NotEmpty(t, out.Reason)

	id, _ := receipts.FromHint("12")
	out = svc.UpdateAmountForReceipt(ctx, 0, id, currency.NewFromFloat(1))
	assert.False(t, out.OK)
	assert.Contains(t, out.Reason, "REC 12")
}
