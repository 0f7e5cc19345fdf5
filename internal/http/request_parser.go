// Package http provides HTTP server and handler implementations.
//
// This file implements the request and response bodies of the JSON API.
// Field names follow the browser client: "_id" for identifiers and "flatNo"
// for the unit.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"societyfund/internal/core"
)

const maxBodyBytes = 1 << 20

type fundRequest struct {
	ID      string       `json:"_id"`
	Name    *string      `json:"name"`
	Block   *string      `json:"block"`
	FlatNo  *string      `json:"flatNo"`
	Amount  *json.Number `json:"amount"`
	Status  *string      `json:"status"`
	Comment *string      `json:"comment"`
}

type expenseRequest struct {
	ID      string       `json:"_id"`
	Details *string      `json:"details"`
	Amount  *json.Number `json:"amount"`
	Date    *string      `json:"date"`
}

// idRequest is the body of DELETE requests that carry the id in the body.
type idRequest struct {
	ID string `json:"_id"`
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errMalformedBody)
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

func (f fundRequest) toEntry() (core.FundEntry, error) {
	e := core.FundEntry{
		Name:    deref(f.Name),
		Unit:    deref(f.FlatNo),
		Comment: deref(f.Comment),
	}

	block, err := core.ParseBlock(deref(f.Block))
	if err != nil {
		return core.FundEntry{}, err
	}
	e.Block = block

	if e.Status, err = core.ParseStatus(deref(f.Status)); err != nil {
		return core.FundEntry{}, err
	}

	if f.Amount != nil {
		if e.Amount, err = parseAmount(*f.Amount); err != nil {
			return core.FundEntry{}, err
		}
	}
	return e, nil
}

func (f fundRequest) toPatch() (core.FundPatch, error) {
	p := core.FundPatch{
		Name:    sanitized(f.Name),
		Unit:    sanitized(f.FlatNo),
		Comment: sanitized(f.Comment),
	}
	if f.Block != nil {
		b, err := core.ParseBlock(*f.Block)
		if err != nil {
			return core.FundPatch{}, err
		}
		p.Block = &b
	}
	if f.Status != nil {
		// The Unpaid default applies to new entries only.
		if strings.TrimSpace(*f.Status) == "" {
			return core.FundPatch{}, &core.FieldError{Field: "status", Reason: "must be Paid or Unpaid"}
		}
		st, err := core.ParseStatus(*f.Status)
		if err != nil {
			return core.FundPatch{}, err
		}
		p.Status = &st
	}
	if f.Amount != nil {
		m, err := parseAmount(*f.Amount)
		if err != nil {
			return core.FundPatch{}, err
		}
		p.Amount = &m
	}
	return p, nil
}

func (e expenseRequest) toEntry() (core.ExpenseEntry, error) {
	out := core.ExpenseEntry{Details: deref(e.Details)}
	var err error
	if e.Amount != nil {
		if out.Amount, err = parseAmount(*e.Amount); err != nil {
			return core.ExpenseEntry{}, err
		}
	}
	if e.Date != nil && strings.TrimSpace(*e.Date) != "" {
		if out.Date, err = parseDate(*e.Date); err != nil {
			return core.ExpenseEntry{}, err
		}
	}
	return out, nil
}

func (e expenseRequest) toPatch() (core.ExpensePatch, error) {
	p := core.ExpensePatch{Details: sanitized(e.Details)}
	if e.Amount != nil {
		m, err := parseAmount(*e.Amount)
		if err != nil {
			return core.ExpensePatch{}, err
		}
		p.Amount = &m
	}
	if e.Date != nil {
		d, err := parseDate(*e.Date)
		if err != nil {
			return core.ExpensePatch{}, err
		}
		p.Date = &d
	}
	return p, nil
}

// parseAmount accepts integer and decimal amounts; zero and negative values
// are rejected.
func parseAmount(n json.Number) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(n.String())
	if err != nil {
		return core.Money{}, &core.FieldError{Field: "amount", Reason: "must be a positive number"}
	}
	return core.Money{Cents: cents}, nil
}

// parseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func parseDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return core.Date{Time: t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return core.Date{Time: t.UTC()}, nil
	}
	return core.Date{}, &core.FieldError{Field: "date", Reason: fmt.Sprintf("must be YYYY-MM-DD, got %q", s)}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return sanitizeInput(*s)
}

func sanitized(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitizeInput(*s)
	return &v
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

type fundResponse struct {
	ID      string      `json:"_id"`
	Name    string      `json:"name"`
	Block   string      `json:"block"`
	FlatNo  string      `json:"flatNo"`
	Amount  json.Number `json:"amount"`
	Status  string      `json:"status"`
	Comment string      `json:"comment,omitempty"`
}

type expenseResponse struct {
	ID      string      `json:"_id"`
	Details string      `json:"details"`
	Amount  json.Number `json:"amount"`
	Date    string      `json:"date"`
}

type statsResponse struct {
	Count           int         `json:"count"`
	PaidCount       int         `json:"paidCount"`
	UnpaidCount     int         `json:"unpaidCount"`
	TotalAmount     json.Number `json:"totalAmount"`
	CollectedAmount json.Number `json:"collectedAmount"`
	PendingAmount   json.Number `json:"pendingAmount"`
}

type blockStatsResponse struct {
	Block string `json:"block"`
	statsResponse
}

type summaryResponse struct {
	Scope   string               `json:"scope"`
	Overall statsResponse        `json:"overall"`
	Blocks  []blockStatsResponse `json:"blocks"`
}

type balanceResponse struct {
	TotalCollection json.Number `json:"totalCollection"`
	TotalExpenses   json.Number `json:"totalExpenses"`
	Balance         json.Number `json:"balance"`
	ExpenseCount    int         `json:"expenseCount"`
}

// amountNumber renders whole amounts without decimals, as the browser
// client expects plain numbers.
func amountNumber(m core.Money) json.Number {
	if m.Whole() {
		return json.Number(strconv.FormatInt(m.Cents/100, 10))
	}
	return json.Number(strconv.FormatFloat(m.Float(), 'f', 2, 64))
}

func toFundResponse(e core.FundEntry) fundResponse {
	return fundResponse{
		ID:      e.ID,
		Name:    e.Name,
		Block:   string(e.Block),
		FlatNo:  e.Unit,
		Amount:  amountNumber(e.Amount),
		Status:  string(e.Status),
		Comment: e.Comment,
	}
}

func toExpenseResponse(e core.ExpenseEntry) expenseResponse {
	return expenseResponse{
		ID:      e.ID,
		Details: e.Details,
		Amount:  amountNumber(e.Amount),
		Date:    e.Date.UTC().Format(time.RFC3339),
	}
}

func toStatsResponse(s core.GroupStats) statsResponse {
	return statsResponse{
		Count:           s.Count,
		PaidCount:       s.PaidCount,
		UnpaidCount:     s.UnpaidCount,
		TotalAmount:     amountNumber(s.Total),
		CollectedAmount: amountNumber(s.Collected),
		PendingAmount:   amountNumber(s.Pending),
	}
}
