package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/target/mmk-queue-monitor/internal/validation"
)

// Page query parameter names.
const (
	paramLimit  = "limit"
	paramOffset = "offset"
)

const maxOffset = 1 << 30

// ParsePage reads limit and offset. Missing values are zero so the service
// applies its defaults; limits above maxLimit are rejected.
func ParsePage(r *http.Request, maxLimit int) (limit, offset int, errs validation.Errors) {
	q := r.URL.Query()
	rawLimit, rawOffset := q.Get(paramLimit), q.Get(paramOffset)

	fv := validation.New().
		Validate(paramLimit, rawLimit, validation.IntRange("Limit", 1, maxLimit)).
		Validate(paramOffset, rawOffset, validation.IntRange("Offset", 0, maxOffset))
	if !fv.Valid() {
		return 0, 0, fv.Errors()
	}
	limit, _ = strconv.Atoi(strings.TrimSpace(rawLimit))
	offset, _ = strconv.Atoi(strings.TrimSpace(rawOffset))
	return limit, offset, nil
}

// parseBoolQuery accepts 1/true/yes and 0/false/no; anything else is def.
func parseBoolQuery(r *http.Request, key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key))) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return def
}

var errInvalidID = errors.New("id must be a positive integer")

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
