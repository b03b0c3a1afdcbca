// Package delivery defines the long-running server surfaces the
// application starts: the HTTP server, the websocket hub and the
// background poller.
package delivery

import "context"

// Delivery is a server surface started at boot. Serve blocks until the
// surface stops or fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
