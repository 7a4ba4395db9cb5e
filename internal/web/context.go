package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/datacleaner/internal/uploads"
)

// withRequestMetadata adds the client IP and User-Agent for the run log.
// RemoteAddr has already been rewritten by TrustedRealIP when the request
// came through a trusted proxy.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return uploads.ContextWithClient(ctx, ip, r.UserAgent())
}
