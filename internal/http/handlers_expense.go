package http

import (
	"fmt"
	"net/http"

	applog "societyfund/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entries.ListExpenses(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpList, err)
		return
	}
	out := make([]expenseResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toExpenseResponse(e))
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.entries.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(toExpenseResponse(e)).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	entry, err := req.toEntry()
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	saved, err := s.entries.CreateExpense(r.Context(), entry)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", fmt.Sprintf("/api/expense/%s", saved.ID)).
		JSON(toExpenseResponse(saved)).
		Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, applog.OpUpdate, err)
		return
	}
	id, err := requestID(r, req.ID)
	if err != nil {
		s.writeError(w, r, applog.OpUpdate, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		s.writeError(w, r, applog.OpUpdate, err)
		return
	}
	updated, err := s.entries.UpdateExpense(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, applog.OpUpdate, err)
		return
	}
	NewResponse().JSON(toExpenseResponse(updated)).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if r.PathValue("id") == "" {
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, applog.OpDelete, err)
			return
		}
	}
	id, err := requestID(r, req.ID)
	if err != nil {
		s.writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.entries.DeleteExpense(r.Context(), id); err != nil {
		s.writeError(w, r, applog.OpDelete, err)
		return
	}
	NewResponse().JSON(map[string]bool{"success": true}).Write(w)
}
