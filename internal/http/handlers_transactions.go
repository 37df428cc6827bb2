package http

import (
	"encoding/json"
	"net/http"

	"finanzas/internal/core"
	"finanzas/internal/log"
)

// handleListTransactions returns every transaction, most recent first.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	OK(newTransactionList(txs)).Write(w, r)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.ledger.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	OK(newTransactionResponse(t)).Write(w, r)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.ledger.GetBalance(r.Context())
	if err != nil {
		writeError(w, r, log.OpBalance, err)
		return
	}
	OK(balanceResponse{Balance: json.Number(balance.String())}).Write(w, r)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	t, err := s.ledger.AddTransaction(r.Context(), in)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	ledgerLogger(r).LogLedgerChange(r.Context(), log.OpCreate, "transaction", t.ID, transactionFields(t))
	Created(newTransactionResponse(t)).Write(w, r)
}

// handleUpdateTransaction applies a partial update; absent fields keep their value.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}

	t, err := s.ledger.EditTransaction(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}

	ledgerLogger(r).LogLedgerChange(r.Context(), log.OpUpdate, "transaction", t.ID, transactionFields(t))
	OK(newTransactionResponse(t)).Write(w, r)
}

// handleDeleteTransaction confirms even when the id did not exist.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ledger.RemoveTransaction(r.Context(), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}

	ledgerLogger(r).LogLedgerChange(r.Context(), log.OpDelete, "transaction", id, nil)
	OK(messageResponse{Message: MsgTransactionDeleted}).Write(w, r)
}

func transactionFields(t core.Transaction) log.LogFields {
	return log.LogFields{
		log.FieldEntryType: string(t.Type),
		log.FieldAmount:    t.Amount.String(),
		log.FieldCategory:  t.Category,
	}
}
