package classify

import (
	"errors"
	"net"
	"syscall"
)

// Network classifies network-level errors from the standard library.
type Network struct{}

// NewNetwork creates a new network error classifier.
func NewNetwork() *Network {
	return &Network{}
}

// IsTransient reports timeouts, temporary DNS failures and refused, reset or
// unreachable connections as transient.
func (c *Network) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// DNS errors
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	// Network operation errors
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		if opErr.Err != nil && isTransientErrno(opErr.Err) {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return isTransientErrno(err)
}

func isTransientErrno(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.EPIPE)
}
