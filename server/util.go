package server

import (
	"fmt"
	"net"

	"github.com/plantworks/leantwin/am"
	"github.com/plantworks/leantwin/errors"
)

// isPortAvailable checks if a port is available for binding
func isPortAvailable(port int) bool {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return false
	}
	_ = listener.Close()
	return true
}

// findAvailablePort tries the requested port, then the default and
// fallback ports, then a short high range.
func findAvailablePort(requestedPort int) (int, error) {
	if isPortAvailable(requestedPort) {
		return requestedPort, nil
	}

	for _, port := range []int{am.DefaultServerPort, am.FallbackServerPort} {
		if port != requestedPort && isPortAvailable(port) {
			return port, nil
		}
	}

	fallbackStart := 8430
	for i := 0; i < 10; i++ {
		if port := fallbackStart + i; isPortAvailable(port) {
			return port, nil
		}
	}

	return 0, errors.Newf("no available ports found (tried %d, %d, %d, and range %d-%d)",
		requestedPort, am.DefaultServerPort, am.FallbackServerPort,
		fallbackStart, fallbackStart+9)
}

// newTimeoutError reports tracker work that outlived the HTTP request.
func newTimeoutError(name string) error {
	return errors.WithHint(
		errors.Wrapf(errors.ErrServiceUnavailable, "task %q timed out", name),
		"the repository may be slow or unreachable")
}
