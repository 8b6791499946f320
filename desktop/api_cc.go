package main

import (
	"fmt"

	"github.com/textilsur/gestiontextil/desktop/internal/common"
	"github.com/textilsur/gestiontextil/desktop/internal/cuentacorriente"
	"github.com/textilsur/gestiontextil/desktop/internal/documents"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
	"github.com/textilsur/gestiontextil/desktop/internal/logger"
	"github.com/textilsur/gestiontextil/desktop/internal/reconciliation"
)

// ============================================================================
// ENTITIES API
// ============================================================================

// ListEntities returns clients or suppliers
func (a *App) ListEntities(kind string) (resp common.StandardResponse) {
	defer recoverResponse("ListEntities", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}
	k, err := entities.ParseKind(kind)
	if err != nil {
		return common.ErrorResponse(err)
	}
	return respond(a.Services.Entities.List(a.ctx, k))
}

// AddEntity creates a client or supplier
func (a *App) AddEntity(e entities.Entity) (resp common.StandardResponse) {
	defer recoverResponse("AddEntity", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}
	id, err := a.Services.Entities.Add(a.ctx, e)
	if err != nil {
		return common.ErrorResponse(err)
	}
	return common.SuccessResponse(map[string]interface{}{"id": id})
}

// ============================================================================
// RUNNING ACCOUNTS API
// ============================================================================

// IssueReceipt records a client payment and writes its PDF
func (a *App) IssueReceipt(req documents.ReceiptRequest) (resp common.StandardResponse) {
	defer recoverResponse("IssueReceipt", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	if req.OutputPath == "" && req.OutputDir == "" {
		req.OutputDir = a.Services.Config.PDF.OutputDir
	}
	issued, err := a.Services.Documents.IssueReceipt(a.ctx, req)
	if err != nil {
		return common.ErrorResponse(err)
	}
	a.notify(reconciliation.EventCC, reconciliation.EventCaja, reconciliation.EventCheques)
	return common.StandardResponse{Success: true, Data: issued, Message: fmt.Sprintf("Recibo %s emitido", issued.Numero)}
}

// IssuePaymentOrder records a supplier payment, endorses the selected checks
// and writes its PDF
func (a *App) IssuePaymentOrder(req documents.PaymentOrderRequest) (resp common.StandardResponse) {
	defer recoverResponse("IssuePaymentOrder", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	if req.OutputPath == "" && req.OutputDir == "" {
		req.OutputDir = a.Services.Config.PDF.OutputDir
	}
	issued, err := a.Services.Documents.IssuePaymentOrder(a.ctx, req)
	if err != nil {
		return common.ErrorResponse(err)
	}
	a.notify(reconciliation.EventCC, reconciliation.EventCaja, reconciliation.EventCheques)
	return common.StandardResponse{Success: true, Data: issued, Message: fmt.Sprintf("Orden de pago %s emitida", issued.Numero)}
}

// ListCC returns the lines of an entity and the balance of the queried bucket
func (a *App) ListCC(q cuentacorriente.Query) (resp common.StandardResponse) {
	defer recoverResponse("ListCC", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	lines, err := a.Services.CC.List(a.ctx, q)
	if err != nil {
		return common.ErrorResponse(err)
	}
	saldo, err := a.Services.CC.Balance(a.ctx, q.Kind, q.EntityID, q.Cuenta)
	if err != nil {
		return common.ErrorResponse(err)
	}
	return common.SuccessResponse(map[string]interface{}{
		"lines": lines,
		"saldo": saldo.ToFloat64(),
	})
}

// DeleteCCLine deletes a line together with its cash entry and check
func (a *App) DeleteCCLine(kind string, cuenta int, id int64, pin string) (resp common.StandardResponse) {
	defer recoverResponse("DeleteCCLine", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	k, err := entities.ParseKind(kind)
	if err != nil {
		return common.ErrorResponse(err)
	}
	if err := a.Services.Guard.Check(pin); err != nil {
		logger.WriteWarning("CuentaCorriente", fmt.Sprintf("Delete of %s line %d refused: %v", k, id, err))
		return common.ErrorResponse(err)
	}
	if err := a.Services.CC.DeleteCascade(a.ctx, k, cuenta, id); err != nil {
		return common.ErrorResponse(err)
	}
	a.notify(reconciliation.EventCC, reconciliation.EventCaja, reconciliation.EventCheques)
	return common.MessageResponse(true, "Movimiento eliminado")
}

// ============================================================================
// RECONCILIATION AND STATEMENTS API
// ============================================================================

// ReconcileReceipt recomputes a receipt from its checks on demand
func (a *App) ReconcileReceipt(number string) (resp common.StandardResponse) {
	defer recoverResponse("ReconcileReceipt", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	res := a.Services.Reconciliation.ReconcileReceipt(a.ctx, number)
	return common.StandardResponse{Success: res.Success, Data: res, Message: res.Message}
}

// EmitStatements writes account statements. With both dates empty one PDF is
// written per bucket with an open balance; otherwise cuenta and the range
// select the lines.
func (a *App) EmitStatements(kind string, id int64, cuenta int, from, to string) (resp common.StandardResponse) {
	defer recoverResponse("EmitStatements", &resp)
	if err := a.requireServices(); err != nil {
		return common.ErrorResponse(err)
	}

	k, err := entities.ParseKind(kind)
	if err != nil {
		return common.ErrorResponse(err)
	}
	dir := a.Services.Config.PDF.OutputDir

	if from == "" && to == "" {
		out, err := a.Services.Statements.Emit(a.ctx, k, id, dir)
		if err != nil {
			return common.ErrorResponse(err)
		}
		if len(out) == 0 {
			return common.MessageResponse(true, "La cuenta no tiene saldo pendiente")
		}
		return common.SuccessResponse(out)
	}
	return respond(a.Services.Statements.EmitRange(a.ctx, k, id, cuenta, from, to, dir))
}
