package main

import (
	"fmt"

	"github.com/textilsur/gestiontextil/desktop/internal/caja"
	"github.com/textilsur/gestiontextil/desktop/internal/common"
	"github.com/textilsur/gestiontextil/desktop/internal/logger"
	"github.com/textilsur/gestiontextil/desktop/internal/reconciliation"
)

// ============================================================================
// CASH LEDGER API
// ============================================================================

// AddCajaEntry records a manual cash movement
func (a *App) AddCajaEntry(entry caja.Entry) (resp common.StandardResponse) {
	defer recoverResponse("AddCajaEntry", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	id, err := a.Services.Caja.Add(a.ctx, entry)
	if err != nil {
		return common.ErrorResponse(err)
	}
	a.notify(reconciliation.EventCaja)
	return common.SuccessResponse(map[string]interface{}{"id": id})
}

// ListCaja returns the filtered movements and the balance of the bucket
func (a *App) ListCaja(filter caja.Filter) (resp common.StandardResponse) {
	defer recoverResponse("ListCaja", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	entries, err := a.Services.Caja.List(a.ctx, filter)
	if err != nil {
		return common.ErrorResponse(err)
	}
	balance, err := a.Services.Caja.Balance(a.ctx, filter.Cuenta)
	if err != nil {
		return common.ErrorResponse(err)
	}
	return common.SuccessResponse(map[string]interface{}{
		"entries": entries,
		"balance": balance.ToFloat64(),
	})
}

// DeleteCajaEntry deletes a manual entry. force also deletes entries created
// by documents after unlinking them, and requires the delete PIN.
func (a *App) DeleteCajaEntry(id int64, force bool, pin string) (resp common.StandardResponse) {
	defer recoverResponse("DeleteCajaEntry", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	if !force {
		if err := a.Services.Caja.DeleteManual(a.ctx, id); err != nil {
			return common.ErrorResponse(err)
		}
		a.notify(reconciliation.EventCaja)
		return common.MessageResponse(true, fmt.Sprintf("Movimiento %d eliminado", id))
	}

	if err := a.Services.Guard.Check(pin); err != nil {
		logger.WriteWarning("Caja", fmt.Sprintf("Forced delete of %d refused: %v", id, err))
		return common.ErrorResponse(err)
	}
	if err := a.Services.Caja.ForceDelete(a.ctx, id); err != nil {
		return common.ErrorResponse(err)
	}
	a.notify(reconciliation.EventCaja, reconciliation.EventCheques, reconciliation.EventCC)
	return common.MessageResponse(true, fmt.Sprintf("Movimiento %d eliminado", id))
}
