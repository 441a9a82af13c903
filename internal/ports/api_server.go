package ports

import "context"

// APIServer defines the interface for the caller-facing transport layer
type APIServer interface {
	// Start starts serving verification requests
	Start() error

	// Stop shuts the server down gracefully
	Stop(ctx context.Context) error
}
