// Package http serves the JSON API.
//
// This file implements utilities for parsing and validating HTTP request
// data. Month and user parameters are validated at this boundary so the
// analysis engine only ever sees well-formed input.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"financas/internal/core"
)

var (
	errMissingUserID = errors.New("parâmetro user_id é obrigatório")
	errInvalidUserID = errors.New("parâmetro user_id inválido")
	errInvalidMonth  = errors.New("parâmetro month inválido, use o formato YYYY-MM")
)

func nowUTC() time.Time { return time.Now().UTC() }

// parseUserID extracts the required user_id query parameter.
func parseUserID(query url.Values) (int64, error) {
	v := strings.TrimSpace(query.Get("user_id"))
	if v == "" {
		return 0, errMissingUserID
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidUserID
	}
	return id, nil
}

// parseMonthParam extracts the optional month query parameter (YYYY-MM).
// An absent month defaults to the current month; a malformed one is an error.
func parseMonthParam(query url.Values) (time.Time, error) {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return core.MonthKey(nowUTC()), nil
	}
	m, err := core.ParseMonth(v)
	if err != nil {
		return time.Time{}, errInvalidMonth
	}
	return m, nil
}

// parseOptionalMonth is like parseMonthParam but leaves the month zero when
// absent, so listings can span all months.
func parseOptionalMonth(query url.Values) (time.Time, error) {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return time.Time{}, nil
	}
	m, err := core.ParseMonth(v)
	if err != nil {
		return time.Time{}, errInvalidMonth
	}
	return m, nil
}

// decodeJSON reads and decodes a JSON request body into dst, rejecting
// unknown fields so typos surface as 400s instead of silent zero values.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// pathID extracts the numeric ID from a path like /api/expenses/42 or
// /api/alerts/42/read.
func pathID(path, prefix string) (int64, error) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.TrimSuffix(rest, "/read")
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return 0, errors.New("id ausente no caminho")
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id inválido: %q", rest)
	}
	return id, nil
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
