package export

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/textilsur/gestiontextil/desktop/internal/caja"
	"github.com/textilsur/gestiontextil/desktop/internal/cuentacorriente"
	"github.com/textilsur/gestiontextil/desktop/internal/database/dbtest"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
)

func newService(t *testing.T) (*Service, *caja.Service, *cuentacorriente.Service) {
	t.Helper()
	db := dbtest.New(t)
	cajaSvc := caja.NewService(db)
	cc := cuentacorriente.NewService(db, cajaSvc)
	return NewService(cajaSvc, cc), cajaSvc, cc
}

func readRows(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return rows
}

func TestCajaExport(t *testing.T) {
	svc, cajaSvc, _ := newService(t)
	ctx := context.Background()

	for _, e := range []caja.Entry{
		{Fecha: "2026-01-01", Tipo: caja.Ingreso, Medio: "efectivo", Concepto: "Venta", Monto: 1000},
		{Fecha: "2026-01-02", Tipo: caja.Egreso, Medio: "banco", Concepto: "Hilado", Monto: 250.5},
		{Fecha: "2026-01-03", Tipo: caja.Ingreso, Medio: "cheque", Concepto: "Cobro", Monto: 100},
	} {
		_, err := cajaSvc.Add(ctx, e)
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "out", "caja.xlsx")
	n, err := svc.Caja(ctx, path, caja.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows := readRows(t, path, "Caja")
	require.Len(t, rows, 4)
	assert.Equal(t, "Saldo parcial", rows[0][8])
	assert.Equal(t, "2026-01-01", rows[1][0])
	assert.Equal(t, "1000", rows[1][8])
	assert.Equal(t, "749.5", rows[2][8])
	assert.Equal(t, "849.5", rows[3][8])
}

func TestCuentaCorrienteExport(t *testing.T) {
	svc, _, cc := newService(t)
	ctx := context.Background()

	for _, l := range []cuentacorriente.Line{
		{Cuenta: 1, Fecha: "2026-02-01", Doc: "FAC", Numero: "1", Debe: 300},
		{Cuenta: 2, Fecha: "2026-02-02", Doc: "FAC", Numero: "2", Debe: 50},
		{Cuenta: 1, Fecha: "2026-02-03", Doc: "REC", Numero: "0001-00000009", Haber: 120},
	} {
		l.Kind, l.EntityID = entities.Cliente, 4
		_, err := cc.Add(ctx, l)
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "cc.xlsx")
	n, err := svc.CuentaCorriente(ctx, path, entities.Cliente, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows := readRows(t, path, "Cuenta corriente")
	require.Len(t, rows, 3)
	assert.Equal(t, "REC 0001-00000009", rows[2][2])
	assert.Equal(t, "180", rows[2][7])

	n, err = svc.CuentaCorriente(ctx, path, entities.Cliente, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	rows = readRows(t, path, "Cuenta corriente")
	assert.Equal(t, "230", rows[3][7])
}
