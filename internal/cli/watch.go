package cli

import (
	"context"
	"io"
	"time"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/pkg/ports"
)

// settleDelay lets editors finish writing before a source is re-read.
const settleDelay = 100 * time.Millisecond

// WatchImport imports src into the app and re-imports it, replacing the previous
// import, every time the source reports a change. It returns when ctx is done.
func WatchImport(ctx context.Context, app *App, src ports.StorySource, out io.Writer) error {
	if _, err := app.Library.ImportFrom(ctx, src, quire.ImportOptions{Replace: true}); err != nil {
		return err
	}
	PrintSystemMessage(out, "Imported. Waiting for changes...")

	w, ok := src.(ports.Watchable)
	if !ok {
		app.Logger.Warn("Source does not support watching")
		return nil
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			app.Logger.Info("Change detected, re-importing", "event", event)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(settleDelay):
			}
			imported, err := app.Library.ImportFrom(ctx, src, quire.ImportOptions{Replace: true})
			if err != nil {
				app.Logger.Error("Re-import failed", "err", err)
				continue
			}
			for _, s := range imported {
				PrintSystemMessage(out, "Re-imported '%s' (%d passages).", s.Name, len(s.Passages))
			}
		}
	}
}
