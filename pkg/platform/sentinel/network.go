package sentinel

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
)

// IsConnectionFailure reports whether err means the backend could not be
// reached, as opposed to the backend rejecting the request.
func IsConnectionFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
