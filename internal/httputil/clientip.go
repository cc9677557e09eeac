package httputil

import (
	"net"
	"net/http"
)

// ClientIP returns the caller's address without the port. RealIP may have
// already replaced RemoteAddr with a bare IP, in which case it is returned
// as is.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
