package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
)

// KindForStatus maps a vendor HTTP status to a failure kind
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusTooManyRequests:
		return KindRateLimit
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindConnection
	default:
		return KindOther
	}
}

// IsConnectionError reports transport-level failures: timeouts, refused
// connections, DNS errors and cancelled calls
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
