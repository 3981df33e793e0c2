package runner

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// PortGuard holds a claimed listen address for the duration of a run.
// Tests exercising a server under test claim its port up front so that
// two runs colliding on the same address fail fast with a recognizable
// error instead of producing confusing partial output.
type PortGuard struct {
	ln net.Listener
}

// ClaimPort binds the given TCP address. If another holder already bound
// it, the returned error wraps ErrResourceConflict.
func ClaimPort(addr string) (*PortGuard, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("%w: %s", ErrResourceConflict, addr)
		}
		return nil, fmt.Errorf("claim %s: %w", addr, err)
	}
	return &PortGuard{ln: ln}, nil
}

// Addr returns the bound address, including the resolved port when the
// claim was for port 0.
func (g *PortGuard) Addr() string {
	return g.ln.Addr().String()
}

// Listener hands the claimed listener to the computation under test.
// The guard still owns it; Release closes it.
func (g *PortGuard) Listener() net.Listener {
	return g.ln
}

// Release frees the address. Part of run cleanup; safe to call once.
func (g *PortGuard) Release() error {
	return g.ln.Close()
}
