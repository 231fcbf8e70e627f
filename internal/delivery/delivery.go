// Package delivery defines the contract every delivery mechanism implements.
package delivery

import "context"

// Delivery is a long-running delivery surface (HTTP console, etc.).
type Delivery interface {
	Serve(ctx context.Context) error
}
