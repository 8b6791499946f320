package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textilsur/gestiontextil/desktop/internal/caja"
	"github.com/textilsur/gestiontextil/desktop/internal/cheques"
	"github.com/textilsur/gestiontextil/desktop/internal/database/dbtest"
)

type fixture struct {
	svc     *Service
	cheques *cheques.Service
	caja    *caja.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := dbtest.New(t)
	ch := cheques.NewService(db)
	cj := caja.NewService(db)
	return fixture{svc: NewService(db, ch, cj), cheques: ch, caja: cj}
}

func (f fixture) check(t *testing.T, c cheques.Cheque) int64 {
	t.Helper()
	id, err := f.cheques.Add(context.Background(), c)
	require.NoError(t, err)
	return id
}

func (f fixture) entry(t *testing.T, monto float64) int64 {
	t.Helper()
	id, err := f.caja.Add(context.Background(), caja.Entry{Tipo: caja.Ingreso, Monto: monto})
	require.NoError(t, err)
	return id
}

func issueTypes(r *AuditResult) []string {
	var out []string
	for _, i := range r.Issues {
		out = append(out, i.Type)
	}
	return out
}

func TestReceiptGroupAnomaliesClean(t *testing.T) {
	f := newFixture(t)
	cajaID := f.entry(t, 300)
	f.check(t, cheques.Cheque{Numero: "1", Importe: 100, ClienteID: 1, MovCajaID: cajaID, Obs: "REC 0001-00000001"})
	f.check(t, cheques.Cheque{Numero: "2", Importe: 200, ClienteID: 1, MovCajaID: cajaID, Obs: "REC 0001-00000001"})
	f.check(t, cheques.Cheque{Numero: "3", Importe: 50, Obs: "sin recibo"})

	res, err := f.svc.ReceiptGroupAnomalies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.Equal(t, 3, res.TotalChecks)
	assert.Equal(t, 1, res.Summary["receiptGroups"])
	assert.Equal(t, 1, res.Summary["untaggedChecks"])
}

func TestReceiptGroupAnomaliesFindsProblems(t *testing.T) {
	f := newFixture(t)
	a, b := f.entry(t, 100), f.entry(t, 999)

	// spread over two cash entries and two clients
	f.check(t, cheques.Cheque{Numero: "1", Importe: 60, ClienteID: 1, MovCajaID: a, Obs: "REC 7"})
	f.check(t, cheques.Cheque{Numero: "2", Importe: 40, ClienteID: 2, MovCajaID: b, Obs: "REC 7"})
	// cash entry out of date
	f.check(t, cheques.Cheque{Numero: "3", Importe: 10, ClienteID: 1, MovCajaID: b, Obs: "REC 8"})

	res, err := f.svc.ReceiptGroupAnomalies(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{IssueMultipleCaja, IssueMultipleClients, IssueAmountMismatch}, issueTypes(res))
	assert.Equal(t, 2, res.Summary["receiptGroups"])
	assert.Equal(t, 2, res.Summary["errors"])
	assert.Equal(t, 1, res.Summary["warnings"])

	for _, i := range res.Issues {
		if i.Type == IssueAmountMismatch {
			assert.Equal(t, "8", i.Details["receipt"])
			assert.Equal(t, 999.0, i.Details["cajaAmount"])
		}
	}
}

func TestDuplicateChecks(t *testing.T) {
	f := newFixture(t)
	f.check(t, cheques.Cheque{Numero: "100", Banco: "Nación", Importe: 1})
	f.check(t, cheques.Cheque{Numero: "100", Banco: "Galicia", Importe: 3})
	f.check(t, cheques.Cheque{Numero: "101", Banco: "Nación", Importe: 4})

	res, err := f.svc.DuplicateChecks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalChecks)
	assert.Empty(t, res.Issues)

	f.check(t, cheques.Cheque{Numero: "101", Banco: "nación", Importe: 5})
	res, err = f.svc.DuplicateChecks(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, 2, res.Issues[0].Details["count"])
	assert.Equal(t, 2, res.Summary["checksAffectedByDuplicates"])
}
