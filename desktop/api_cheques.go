package main

import (
	"github.com/textilsur/gestiontextil/desktop/internal/cheques"
	"github.com/textilsur/gestiontextil/desktop/internal/common"
	"github.com/textilsur/gestiontextil/desktop/internal/reconciliation"
)

// ============================================================================
// CHECKS API
// ============================================================================

// AddCheque stores a check received outside a receipt
func (a *App) AddCheque(c cheques.Cheque) (resp common.StandardResponse) {
	defer recoverResponse("AddCheque", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	id, err := a.Services.Cheques.Add(a.ctx, c)
	if err != nil {
		return common.ErrorResponse(err)
	}
	a.notify(reconciliation.EventCheques)
	return common.SuccessResponse(map[string]interface{}{"id": id})
}

// EditCheque saves the changes and then brings the receipt the check belongs
// to back in line with its checks. hint is the receipt number typed by the
// user, empty to discover it from the check.
func (a *App) EditCheque(id int64, changes cheques.Changes, hint string) (resp common.StandardResponse) {
	defer recoverResponse("EditCheque", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	if err := a.Services.Cheques.Edit(a.ctx, id, changes); err != nil {
		return common.ErrorResponse(err)
	}
	a.notify(reconciliation.EventCheques)

	res := a.Services.Reconciliation.ReconcileCheck(a.ctx, id, hint)
	// the edit is saved even when the receipt could not be reconciled
	return common.StandardResponse{Success: true, Data: res, Message: res.Message}
}

// ChangeChequeState records a deposit, endorsement or rejection
func (a *App) ChangeChequeState(id int64, change cheques.StateChange) (resp common.StandardResponse) {
	defer recoverResponse("ChangeChequeState", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	if err := a.Services.Cheques.ChangeState(a.ctx, id, change); err != nil {
		return common.ErrorResponse(err)
	}
	a.notify(reconciliation.EventCheques)
	return common.MessageResponse(true, "Estado actualizado")
}

// ListCheques returns checks in the given state, every check when empty
func (a *App) ListCheques(estado string) (resp common.StandardResponse) {
	defer recoverResponse("ListCheques", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}
	return respond(a.Services.Cheques.List(a.ctx, estado))
}
