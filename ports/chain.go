package ports

import "context"

// ChainReader performs lightweight reads against the chain RPC node.
// Implementations must respect the context deadline; callers wrap reads in
// the retry guard rather than retrying internally.
type ChainReader interface {
	// Health checks the RPC node's own health endpoint.
	Health(ctx context.Context) error

	// Slot returns the node's current slot, proving it can serve reads.
	Slot(ctx context.Context) (uint64, error)
}
