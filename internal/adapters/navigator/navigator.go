// Package navigator provides adapters that perform full-page navigations.
package navigator

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/browser"
)

// openURL is swapped in tests.
var openURL = browser.OpenURL

// Browser opens targets in the system browser. When the browser cannot be started the
// target is printed to Fallback so the user can open it manually.
type Browser struct {
	Fallback io.Writer
	Logger   *slog.Logger
}

func (b *Browser) logger() *slog.Logger {
	if b != nil && b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// Navigate opens target in the system browser. When that fails and Fallback
// is set, the URL is printed there instead.
func (b *Browser) Navigate(ctx context.Context, target string) error {
	b.logger().DebugContext(ctx, "opening browser", "url", target)
	if err := openURL(target); err != nil {
		b.logger().WarnContext(ctx, "failed to open browser", "error", err)
		if b.Fallback == nil {
			return fmt.Errorf("open browser: %w", err)
		}
		return writeTarget(b.Fallback, target)
	}
	return nil
}

// Print writes each target to W on its own line.
type Print struct {
	W io.Writer
}

// Navigate prints target to W.
func (p *Print) Navigate(_ context.Context, target string) error {
	return writeTarget(p.W, target)
}

func writeTarget(w io.Writer, target string) error {
	if _, err := fmt.Fprintf(w, "Open this URL in your browser:\n  %s\n", target); err != nil {
		return fmt.Errorf("write navigation target: %w", err)
	}
	return nil
}
