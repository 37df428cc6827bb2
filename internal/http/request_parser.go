// Package http provides HTTP server and handler implementations.
//
// This file implements decoding and validation of JSON request bodies. Field
// shapes are checked here; domain rules are left to the ledger service.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"finanzas/internal/core"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

var (
	errMalformedBody = fmt.Errorf("%w: malformed JSON body", core.ErrInvalidArgument)
	errBodyTooLarge  = fmt.Errorf("%w: request body too large", core.ErrInvalidArgument)
)

// transactionRequest is the body of POST /transactions and PUT /transactions/{id}.
// Amount stays raw so both 12.5 and "12,50" are accepted.
type transactionRequest struct {
	Description *string         `json:"description"`
	Amount      json.RawMessage `json:"amount"`
	Type        *string         `json:"type"`
	Category    *string         `json:"category"`
	Date        *string         `json:"date"`
}

type categoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// decodeJSON reads one JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return errBodyTooLarge
		}
		return errMalformedBody
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return errMalformedBody
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errMalformedBody
	}
	return nil
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// toInput converts a create request. A missing or empty date means "now".
func (req transactionRequest) toInput() (core.TransactionInput, error) {
	var in core.TransactionInput

	if req.Description == nil || strings.TrimSpace(*req.Description) == "" {
		return in, core.ErrEmptyDescription
	}
	in.Description = strings.TrimSpace(*req.Description)

	amount, err := core.AmountFromJSON(req.Amount)
	if err != nil {
		return in, err
	}
	in.Amount = amount

	if req.Type == nil {
		return in, core.ErrInvalidType
	}
	t, err := core.ParseEntryType(*req.Type)
	if err != nil {
		return in, err
	}
	in.Type = t

	if req.Category != nil {
		in.Category = strings.TrimSpace(*req.Category)
	}

	if req.Date != nil && strings.TrimSpace(*req.Date) != "" {
		d, err := core.ParseDate(*req.Date)
		if err != nil {
			return in, err
		}
		in.Date = d
	}
	return in, nil
}

// toPatch converts an update request. Absent and null fields stay unchanged.
func (req transactionRequest) toPatch() (core.TransactionPatch, error) {
	var p core.TransactionPatch

	if req.Description != nil {
		d := strings.TrimSpace(*req.Description)
		p.Description = &d
	}
	if !isAbsent(req.Amount) {
		amount, err := core.AmountFromJSON(req.Amount)
		if err != nil {
			return p, err
		}
		p.Amount = &amount
	}
	if req.Type != nil {
		t, err := core.ParseEntryType(*req.Type)
		if err != nil {
			return p, err
		}
		p.Type = &t
	}
	if req.Category != nil {
		c := strings.TrimSpace(*req.Category)
		p.Category = &c
	}
	if req.Date != nil {
		d, err := core.ParseDate(*req.Date)
		if err != nil {
			return p, err
		}
		p.Date = &d
	}
	return p, nil
}

func (req categoryRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return core.ErrEmptyName
	}
	if _, err := core.ParseEntryType(req.Type); err != nil {
		return err
	}
	return nil
}
