package cuentacorriente

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textilsur/gestiontextil/desktop/internal/caja"
	"github.com/textilsur/gestiontextil/desktop/internal/currency"
	"github.com/textilsur/gestiontextil/desktop/internal/database/dbtest"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
	"github.com/textilsur/gestiontextil/desktop/internal/receipts"
)

func doc(t *testing.T, s string) receipts.Identifier {
	t.Helper()
	id, ok := receipts.FromHint(s)
	require.True(t, ok)
	return id
}

func TestCandidateTables(t *testing.T) {
	assert.Equal(t, []string{
		"cc_clientes_c2", "cc_clientes_cuenta2", "cc_cli_cuenta2",
		"cc_clientes_c1", "cc_clientes_cuenta1", "cc_cli_cuenta1",
		"cc_clientes", "cc_cli",
	}, candidateTables(entities.Cliente, 2))
	assert.Equal(t, "cc_proveedores_c1", candidateTables(entities.Proveedor, 0)[0])
}

func TestUpdateReceiptAmountCurrentLayout(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id, err := svc.Add(ctx, Line{Kind: entities.Cliente, Cuenta: 1, EntityID: 3, Doc: "REC", Numero: "0001-00000049", Debe: 5, Haber: 100})
	require.NoError(t, err)
	other, err := svc.Add(ctx, Line{Kind: entities.Cliente, Cuenta: 1, EntityID: 4, Doc: "REC", Numero: "0001-00000049", Haber: 100})
	require.NoError(t, err)

	u := ReceiptUpdate{Kind: entities.Cliente, EntityID: 3, Cuenta: 1, Document: doc(t, "0001-00000049"), Amount: currency.NewFromFloat(350.5)}
	out := svc.UpdateReceiptAmount(ctx, u)
	require.True(t, out.OK, out.Reason)
	assert.Equal(t, "cc_clientes_c1", out.Table)
	assert.Equal(t, int64(1), out.Rows)

	// running it again changes nothing
	again := svc.UpdateReceiptAmount(ctx, u)
	require.True(t, again.OK)

	l, err := svc.Get(ctx, entities.Cliente, 1, id)
	require.NoError(t, err)
	assert.Equal(t, 350.5, l.Haber)
	assert.Zero(t, l.Debe)

	l, err = svc.Get(ctx, entities.Cliente, 1, other)
	require.NoError(t, err)
	assert.Equal(t, 100.0, l.Haber)
}

func TestUpdateReceiptAmountMatchesUnpaddedNumbers(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id, err := svc.Add(ctx, Line{Kind: entities.Cliente, Cuenta: 2, EntityID: 3, Doc: "RECIBO", Numero: "00049", Haber: 10})
	require.NoError(t, err)
	decoy, err := svc.Add(ctx, Line{Kind: entities.Cliente, Cuenta: 2, EntityID: 3, Doc: "REC", Numero: "0049-00000001", Haber: 10})
	require.NoError(t, err)

	out := svc.UpdateReceiptAmount(ctx, ReceiptUpdate{Kind: entities.Cliente, EntityID: 3, Cuenta: 2, Document: doc(t, "49"), Amount: currency.NewFromFloat(75)})
	require.True(t, out.OK, out.Reason)
	assert.Equal(t, "cc_clientes_c2", out.Table)

	l, err := svc.Get(ctx, entities.Cliente, 2, id)
	require.NoError(t, err)
	assert.Equal(t, 75.0, l.Haber)
	l, err = svc.Get(ctx, entities.Cliente, 2, decoy)
	require.NoError(t, err)
	assert.Equal(t, 10.0, l.Haber)
}

func TestUpdateReceiptAmountIgnoresOtherDocuments(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, Line{Kind: entities.Cliente, Cuenta: 1, EntityID: 3, Doc: "FAC", Numero: "49", Debe: 10})
	require.NoError(t, err)

	out := svc.UpdateReceiptAmount(ctx, ReceiptUpdate{Kind: entities.Cliente, EntityID: 3, Cuenta: 1, Document: doc(t, "49"), Amount: currency.NewFromFloat(75)})
	assert.False(t, out.OK)
	assert.Contains(t, out.Reason, "no running-balance line matched REC 49")
}

func TestUpdateReceiptAmountLegacyTables(t *testing.T) {
	db := dbtest.NewEmpty(t)
	dbtest.Exec(t, db,
		`CREATE TABLE cc_cli_cuenta1 (id INTEGER PRIMARY KEY, ent_id INTEGER, documento TEXT, nro TEXT, monto REAL, debito REAL)`,
		`CREATE TABLE cc_cli (id INTEGER PRIMARY KEY, cliente INTEGER, doc TEXT, recibo TEXT, importe REAL)`,
		`INSERT INTO cc_cli_cuenta1 (ent_id, documento, nro, monto, debito) VALUES (3, 'rec', '12', 10, 4)`,
		`INSERT INTO cc_cli (cliente, doc, recibo, importe) VALUES (3, 'REC', '12', 10)`,
	)
	svc := NewService(db, caja.NewService(db))
	ctx := context.Background()

	out := svc.UpdateReceiptAmount(ctx, ReceiptUpdate{Kind: entities.Cliente, EntityID: 3, Document: doc(t, "12"), Amount: currency.NewFromFloat(90)})
	require.True(t, out.OK, out.Reason)
	assert.Equal(t, "cc_cli_cuenta1", out.Table)
	assert.Equal(t, "nro", out.NumberColumn)

	var monto, debito, unified float64
	require.NoError(t, db.GetConn().QueryRow(`SELECT monto, debito FROM cc_cli_cuenta1`).Scan(&monto, &debito))
	assert.Equal(t, 90.0, monto)
	assert.Zero(t, debito)
	require.NoError(t, db.GetConn().QueryRow(`SELECT importe FROM cc_cli`).Scan(&unified))
	assert.Equal(t, 10.0, unified)
}

func TestUpdateReceiptAmountNoUsableTable(t *testing.T) {
	db := dbtest.NewEmpty(t)
	dbtest.Exec(t, db, `CREATE TABLE cc_cli (id INTEGER PRIMARY KEY, cliente_id INTEGER, descripcion TEXT)`)
	svc := NewService(db, caja.NewService(db))

	out := svc.UpdateReceiptAmount(context.Background(), ReceiptUpdate{Kind: entities.Cliente, EntityID: 3, Document: doc(t, "12"), Amount: currency.NewFromFloat(1)})
	assert.False(t, out.OK)
	assert.Equal(t, "no running-balance table with usable columns", out.Reason)

	out = svc.UpdateReceiptAmount(context.Background(), ReceiptUpdate{Kind: entities.Cliente})
	assert.False(t, out.OK)
}

func TestUpdatePaymentOrderAmount(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id, err := svc.Add(ctx, Line{Kind: entities.Proveedor, Cuenta: 1, EntityID: 8, Doc: "OP", Numero: "0001-00000003", Haber: 10})
	require.NoError(t, err)

	out := svc.UpdateReceiptAmount(ctx, ReceiptUpdate{Kind: entities.Proveedor, EntityID: 8, Document: doc(t, "0001-00000003"), Amount: currency.NewFromFloat(40)})
	require.True(t, out.OK, out.Reason)
	l, err := svc.Get(ctx, entities.Proveedor, 1, id)
	require.NoError(t, err)
	assert.Equal(t, 40.0, l.Haber)
}
