package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/SahilMindbowser/mb-meetings-poc/pkg/config"
	apperrors "github.com/SahilMindbowser/mb-meetings-poc/pkg/errors"
)

// CallerIDHeader carries the authenticated caller identity, supplied by the
// upstream auth layer. The engine treats it as opaque.
const CallerIDHeader = "X-Caller-ID"

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractTimeParam parses an optional RFC3339 query parameter; a missing
// parameter yields nil.
func ExtractTimeParam(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid " + name + " format, must be RFC3339")
	}
	return &parsed, nil
}

// ExtractCallerID reads the caller identity header; the empty string means
// the request carried no identity.
func ExtractCallerID(r *http.Request) string {
	return r.Header.Get(CallerIDHeader)
}
