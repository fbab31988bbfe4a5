package logx

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one line per request and seeds the request context with
// a logger carrying the request id, masked client IP, method, and URI, so
// handlers downstream log with the same correlation fields.
func RequestLogger() func(http.Handler) http.Handler {
	base := Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := base.With().
				Str("component", "http").
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("remote_ip", maskIP(r.RemoteAddr)).
				Str("request_method", r.Method).
				Str("request_uri", r.RequestURI).
				Logger()
			r = r.WithContext(reqLogger.WithContext(r.Context()))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			event := reqLogger.Info()
			switch status := ww.Status(); {
			case status >= 500:
				event = reqLogger.Error()
			case status >= 400:
				event = reqLogger.Warn()
			}
			event.
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(start)).
				Msg("Request completed")
		})
	}
}

// maskIP coarsens a client address before it reaches the logs: the last IPv4
// octet, or the interface half of an IPv6 address, is zeroed. Addresses that
// do not parse log as "unknown_ip".
func maskIP(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}

	ip := net.ParseIP(addr)
	switch {
	case ip == nil:
		return "unknown_ip"
	case ip.IsLoopback():
		return "127.0.0.1"
	}

	if v4 := ip.To4(); v4 != nil {
		masked := make(net.IP, len(v4))
		copy(masked, v4)
		masked[3] = 0
		return masked.String()
	}

	masked := make(net.IP, net.IPv6len)
	copy(masked, ip.To16())
	for i := net.IPv6len / 2; i < net.IPv6len; i++ {
		masked[i] = 0
	}
	return masked.String()
}
