package cuentacorriente

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textilsur/gestiontextil/desktop/internal/caja"
	"github.com/textilsur/gestiontextil/desktop/internal/database"
	"github.com/textilsur/gestiontextil/desktop/internal/database/dbtest"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
)

func newService(t *testing.T) (*Service, *database.DB) {
	t.Helper()
	db := dbtest.New(t)
	return NewService(db, caja.NewService(db)), db
}

func TestDocCode(t *testing.T) {
	tests := map[string]string{
		"Recibo":          DocRecibo,
		"orden de pago":   DocOrdenPago,
		"Factura":         DocFactura,
		"Nota de Crédito": DocNotaCredito,
		"nota de debito":  DocNotaDebito,
		"Ajuste (+)":      DocAjusteMas,
		"ajuste (-)":      DocAjusteMenos,
		"cualquier cosa":  DocMovimiento,
	}
	for in, want := range tests {
		assert.Equal(t, want, DocCode(in), in)
	}
}

func TestAmountSide(t *testing.T) {
	tests := []struct {
		kind entities.Kind
		doc  string
		want Side
	}{
		{entities.Cliente, "REC", Haber},
		{entities.Cliente, "FAC", Debe},
		{entities.Cliente, "OP", Debe},
		{entities.Cliente, "NC", Haber},
		{entities.Cliente, "AJ+", Haber},
		{entities.Cliente, "AJ-", Debe},
		{entities.Proveedor, "OP", Haber},
		{entities.Proveedor, "REC", Debe},
		{entities.Proveedor, "ND", Debe},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AmountSide(tt.kind, tt.doc), "%s %s", tt.kind, tt.doc)
	}
}

func TestTable(t *testing.T) {
	assert.Equal(t, "cc_clientes_c1", Table(entities.Cliente, 1))
	assert.Equal(t, "cc_clientes_c2", Table(entities.Cliente, 0))
	assert.Equal(t, "cc_proveedores_c2", Table(entities.Proveedor, 2))
}

func TestAddListBalance(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, Line{Kind: entities.Cliente, Cuenta: 1, EntityID: 3, Fecha: "2026-01-10", Doc: "fac", Numero: "1", Debe: 1000})
	require.NoError(t, err)
	_, err = svc.Add(ctx, Line{Kind: entities.Cliente, Cuenta: 1, EntityID: 3, Fecha: "2026-02-10", Doc: "REC", Numero: "7", Haber: 400})
	require.NoError(t, err)
	_, err = svc.Add(ctx, Line{Kind: entities.Cliente, Cuenta: 2, EntityID: 3, Fecha: "2026-01-20", Doc: "FAC", Numero: "2", Debe: 50})
	require.NoError(t, err)
	_, err = svc.Add(ctx, Line{Kind: entities.Cliente, Cuenta: 1, EntityID: 4, Fecha: "2026-01-20", Doc: "FAC", Numero: "3", Debe: 999})
	require.NoError(t, err)

	lines, err := svc.List(ctx, Query{Kind: entities.Cliente, EntityID: 3, Cuenta: 1})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "REC", lines[0].Doc)
	assert.Equal(t, "FAC", lines[1].Doc)
	assert.Equal(t, 1, lines[1].Cuenta)

	both, err := svc.List(ctx, Query{Kind: entities.Cliente, EntityID: 3, Ascending: true})
	require.NoError(t, err)
	require.Len(t, both, 3)
	assert.Equal(t, "2026-01-10", both[0].Fecha)
	assert.Equal(t, 2, both[1].Cuenta)

	ranged, err := svc.List(ctx, Query{Kind: entities.Cliente, EntityID: 3, Desde: "2026-01-15", Hasta: "2026-01-31"})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "2", ranged[0].Numero)

	bal, err := svc.Balance(ctx, entities.Cliente, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, "600.00", bal.ToString())
	bal, err = svc.Balance(ctx, entities.Cliente, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, "650.00", bal.ToString())
}

func TestAddWithCaja(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	cajaSvc := svc.caja

	lineID, cajaID, err := svc.AddWithCaja(ctx, Line{Kind: entities.Cliente, Cuenta: 1, EntityID: 3, Doc: "REC", Numero: "0001-00000049", Concepto: "Cobro", Medio: "cheque", Haber: 500})
	require.NoError(t, err)

	e, err := cajaSvc.Get(ctx, cajaID)
	require.NoError(t, err)
	assert.Equal(t, caja.Ingreso, e.Tipo)
	assert.Equal(t, 500.0, e.Monto)
	assert.Equal(t, "REC 0001-00000049", e.Detalle)
	assert.Equal(t, "cc_cli", e.OrigenTipo)
	assert.Equal(t, lineID, e.OrigenID)

	l, err := svc.Get(ctx, entities.Cliente, 1, lineID)
	require.NoError(t, err)
	assert.Equal(t, cajaID, l.CajaMovID)

	_, cajaID, err = svc.AddWithCaja(ctx, Line{Kind: entities.Proveedor, Cuenta: 2, EntityID: 1, Doc: "OP", Numero: "3", Haber: 120})
	require.NoError(t, err)
	e, err = cajaSvc.Get(ctx, cajaID)
	require.NoError(t, err)
	assert.Equal(t, caja.Egreso, e.Tipo)
	assert.Equal(t, 2, e.Cuenta)
	assert.Equal(t, "cc_prov", e.OrigenTipo)
}

func TestDeleteCascade(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	lineID, cajaID, err := svc.AddWithCaja(ctx, Line{Kind: entities.Cliente, Cuenta: 1, EntityID: 3, Doc: "REC", Numero: "5", Haber: 100})
	require.NoError(t, err)
	res, err := db.GetConn().Exec(`INSERT INTO cheques (numero, importe, mov_caja_id) VALUES ('77', 100, ?)`, cajaID)
	require.NoError(t, err)
	chequeID, _ := res.LastInsertId()
	_, err = db.GetConn().Exec(`UPDATE cc_clientes_c1 SET cheque_id = ? WHERE id = ?`, chequeID, lineID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCascade(ctx, entities.Cliente, 1, lineID))

	for _, q := range []string{
		"SELECT COUNT(*) FROM movimientos_caja",
		"SELECT COUNT(*) FROM cheques",
		"SELECT COUNT(*) FROM cc_clientes_c1",
	} {
		var n int
		require.NoError(t, db.GetConn().QueryRow(q).Scan(&n))
		assert.Zero(t, n, q)
	}

	assert.ErrorIs(t, svc.DeleteCascade(ctx, entities.Cliente, 1, lineID), ErrNotFound)
}

func TestUpdate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	id, err := svc.Add(ctx, Line{Kind: entities.Proveedor, Cuenta: 1, EntityID: 2, Doc: "FAC", Numero: "9", Debe: 10})
	require.NoError(t, err)
	l, err := svc.Get(ctx, entities.Proveedor, 1, id)
	require.NoError(t, err)

	l.Debe = 25
	l.Concepto = "ajustado"
	require.NoError(t, svc.Update(ctx, *l))

	l, err = svc.Get(ctx, entities.Proveedor, 1, id)
	require.NoError(t, err)
	assert.Equal(t, 25.0, l.Debe)
	assert.Equal(t, "ajustado", l.Concepto)

	l.ID = 999
	assert.ErrorIs(t, svc.Update(ctx, *l), ErrNotFound)
}
