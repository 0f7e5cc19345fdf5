package http

import (
	"fmt"
	"net/http"
	"strings"

	"societyfund/internal/core"
	applog "societyfund/internal/log"
)

// requestID resolves the entry id from the path or, for the collection
// routes, from the body's "_id".
func requestID(r *http.Request, bodyID string) (string, error) {
	if id := strings.TrimSpace(r.PathValue("id")); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(bodyID); id != "" {
		return id, nil
	}
	return "", &core.FieldError{Field: "_id", Reason: "is required"}
}

func (s *Server) handleListFunds(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entries.ListFunds(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpList, err)
		return
	}
	out := make([]fundResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toFundResponse(e))
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleGetFund(w http.ResponseWriter, r *http.Request) {
	e, err := s.entries.GetFund(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(toFundResponse(e)).Write(w)
}

func (s *Server) handleCreateFund(w http.ResponseWriter, r *http.Request) {
	var req fundRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	entry, err := req.toEntry()
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	saved, err := s.entries.CreateFund(r.Context(), entry)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", fmt.Sprintf("/api/fund/%s", saved.ID)).
		JSON(toFundResponse(saved)).
		Write(w)
}

func (s *Server) handleUpdateFund(w http.ResponseWriter, r *http.Request) {
	var req fundRequest
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
	updated, err := s.entries.UpdateFund(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, applog.OpUpdate, err)
		return
	}
	NewResponse().JSON(toFundResponse(updated)).Write(w)
}

func (s *Server) handleDeleteFund(w http.ResponseWriter, r *http.Request) {
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
	if err := s.entries.DeleteFund(r.Context(), id); err != nil {
		s.writeError(w, r, applog.OpDelete, err)
		return
	}
	NewResponse().JSON(map[string]bool{"success": true}).Write(w)
}
