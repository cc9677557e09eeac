package handler

import (
	"net/http"
	"strconv"
)

// ParseCursor reads the "after" polling cursor. Missing, malformed or
// negative values mean "from the beginning".
func ParseCursor(r *http.Request) int64 {
	after, err := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
	if err != nil || after < 0 {
		return 0
	}
	return after
}
