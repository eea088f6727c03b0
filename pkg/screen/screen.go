// Package screen defines the automation surface for driving a node's
// graphical console. Implementations wrap an external automation backend;
// this package deliberately ships no driver of its own.
package screen

import (
	"context"
	"time"
)

// Automator drives a graphical console. A pattern names an image or element
// known to the automation backend.
type Automator interface {
	// Click clicks the first match of pattern.
	Click(ctx context.Context, pattern string) error
	// DoubleClick double-clicks the first match of pattern.
	DoubleClick(ctx context.Context, pattern string) error
	// Type sends literal text to the focused element.
	Type(ctx context.Context, text string) error
	// WaitFor blocks until pattern shows up on screen or timeout elapses.
	WaitFor(ctx context.Context, pattern string, timeout time.Duration) error
	// Exists reports whether pattern is currently visible.
	Exists(ctx context.Context, pattern string) (bool, error)
}
