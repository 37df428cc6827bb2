package http

import (
	"net/http"

	"finanzas/internal/log"
)

// handleListCategories returns the categories of one type sorted by name.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.ListCategories(r.Context(), r.PathValue("type"))
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	OK(newCategoryList(cats)).Write(w, r)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	if err := req.validate(); err != nil {
		// Any shape problem is reported as one generic message.
		ErrorResponse(http.StatusBadRequest, MsgInvalidData).Write(w, r)
		return
	}

	c, err := s.ledger.AddCategory(r.Context(), req.Name, req.Type)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	ledgerLogger(r).LogLedgerChange(r.Context(), log.OpCreate, "category", c.ID,
		log.LogFields{log.FieldCategory: c.Name, log.FieldEntryType: string(c.Type)})
	Created(newCategoryResponse(c)).Write(w, r)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	if err := req.validate(); err != nil {
		ErrorResponse(http.StatusBadRequest, MsgInvalidData).Write(w, r)
		return
	}

	c, err := s.ledger.EditCategory(r.Context(), id, req.Name, req.Type)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}

	ledgerLogger(r).LogLedgerChange(r.Context(), log.OpUpdate, "category", c.ID,
		log.LogFields{log.FieldCategory: c.Name, log.FieldEntryType: string(c.Type)})
	OK(newCategoryResponse(c)).Write(w, r)
}

// handleDeleteCategory confirms even when the id did not exist. Transactions
// that use the category name keep it.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ledger.RemoveCategory(r.Context(), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}

	ledgerLogger(r).LogLedgerChange(r.Context(), log.OpDelete, "category", id, nil)
	OK(messageResponse{Message: MsgCategoryDeleted}).Write(w, r)
}
