package importer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textilsur/gestiontextil/desktop/internal/caja"
	"github.com/textilsur/gestiontextil/desktop/internal/cuentacorriente"
	"github.com/textilsur/gestiontextil/desktop/internal/database/dbtest"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
)

func newService(t *testing.T) (*Service, *cuentacorriente.Service) {
	t.Helper()
	db := dbtest.New(t)
	cc := cuentacorriente.NewService(db, caja.NewService(db))
	return NewService(cc), cc
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ';', sniffDelimiter([]byte("fecha;doc;debe\n01/02/2026;FAC;1,5")))
	assert.Equal(t, ',', sniffDelimiter([]byte("fecha,doc,debe\n")))
	assert.Equal(t, ',', sniffDelimiter([]byte("fecha")))
}

func TestColumnMap(t *testing.T) {
	cols := columnMap([]string{"\ufeffFecha", "Cliente", "Documento", "Nro", "Detalle", "Debito", "Credito"})
	assert.Equal(t, map[string]int{
		"fecha": 0, "id": 1, "doc": 2, "numero": 3, "concepto": 4, "debe": 5, "haber": 6,
	}, cols)
}

func TestLine(t *testing.T) {
	tests := []struct {
		name      string
		kind      entities.Kind
		rec       record
		wantDebe  float64
		wantHaber float64
		wantErr   bool
	}{
		{"debe and haber", entities.Cliente, record{"fecha": "2026-01-01", "doc": "factura", "debe": "1.234,50"}, 1234.5, 0, false},
		{"importe on receipt", entities.Cliente, record{"fecha": "2026-01-01", "doc": "Recibo", "importe": "100"}, 0, 100, false},
		{"importe on supplier invoice", entities.Proveedor, record{"fecha": "2026-01-01", "doc": "FAC", "importe": "100"}, 100, 0, false},
		{"negative debe", entities.Cliente, record{"fecha": "2026-01-01", "debe": "(50,00)"}, 0, 50, false},
		{"no amount", entities.Cliente, record{"fecha": "2026-01-01"}, 0, 0, true},
		{"bad date", entities.Cliente, record{"fecha": "31/02/2026", "debe": "1"}, 0, 0, true},
		{"bad amount", entities.Cliente, record{"fecha": "2026-01-01", "debe": "abc"}, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := line(tt.kind, 1, tt.rec, 9)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebe, l.Debe)
			assert.Equal(t, tt.wantHaber, l.Haber)
			assert.Equal(t, int64(9), l.EntityID)
		})
	}

	_, err := line(entities.Cliente, 1, record{"fecha": "2026-01-01", "debe": "1"}, 0)
	assert.Error(t, err)

	l, err := line(entities.Cliente, 1, record{"fecha": "2026-01-01", "id": "12", "debe": "1"}, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(12), l.EntityID)
}

func TestImportCSV(t *testing.T) {
	svc, cc := newService(t)
	ctx := context.Background()

	data := "\ufefffecha;id;doc;numero;concepto;medio;debe;haber\n" +
		"01/03/2026;4;Factura;A-1;Tela;;1.500,00;\n" +
		"\n" +
		"2026-03-10;4;Recibo;0001-00000007;Pago;efectivo;;500,00\n" +
		"no es fecha;4;FAC;2;;;10;\n" +
		"15/03/2026;;FAC;3;;;20;\n"

	rep, err := svc.ImportCSV(ctx, entities.Cliente, 2, strings.NewReader(data), 5)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Imported)
	assert.Equal(t, 1, rep.Skipped)
	require.Len(t, rep.Errors, 1)
	assert.Contains(t, rep.Errors[0], "row 3")

	bal, err := cc.Balance(ctx, entities.Cliente, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", bal.ToString())

	lines, err := cc.List(ctx, cuentacorriente.Query{Kind: entities.Cliente, EntityID: 5, Cuenta: 2})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "2026-03-15", lines[0].Fecha)
}

func TestImportCSVCommaAndErrors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	rep, err := svc.ImportCSV(ctx, entities.Proveedor, 1, strings.NewReader("fecha,doc,importe\n2026-04-01,OP,\"1,234.50\"\n"), 3)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Imported)

	_, err = svc.ImportCSV(ctx, entities.Proveedor, 1, strings.NewReader(""), 3)
	assert.Error(t, err)

	_, err = svc.ImportCSV(ctx, entities.Proveedor, 1, strings.NewReader("doc,importe\nFAC,1\n"), 3)
	assert.Error(t, err)
}

func TestImportDBFMissingFile(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.ImportDBF(context.Background(), entities.Cliente, 1, filepath.Join(t.TempDir(), "nada.dbf"), 1)
	assert.Error(t, err)
}

func TestDBFText(t *testing.T) {
	assert.Equal(t, "2026-05-04", dbfText(time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", dbfText(time.Time{}))
	assert.Equal(t, "12.5", dbfText(12.5))
	assert.Equal(t, "3", dbfText(float64(3)))
	assert.Equal(t, "FAC", dbfText("FAC"))
	assert.Equal(t, "7", dbfText(int64(7)))
}
