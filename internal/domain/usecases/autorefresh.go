package usecases

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/0xcro3dile/coderag-go/internal/domain/entities"
	"github.com/0xcro3dile/coderag-go/internal/domain/ports"
)

const defaultRefreshDebounce = 500 * time.Millisecond

// AutoRefresher re-indexes a Workspace when its tree changes on disk.
// Bursts of events inside one debounce window cause a single refresh.
type AutoRefresher struct {
	workspace *Workspace
	watcher   ports.FileWatcher
	debounce  time.Duration
	logger    *zap.Logger

	refreshed chan int // optional, observes completed refreshes
}

// NewAutoRefresher creates a refresher for workspace.
func NewAutoRefresher(workspace *Workspace, watcher ports.FileWatcher, debounce time.Duration, logger *zap.Logger) *AutoRefresher {
	if debounce <= 0 {
		debounce = defaultRefreshDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoRefresher{
		workspace: workspace,
		watcher:   watcher,
		debounce:  debounce,
		logger:    logger,
	}
}

// Run watches the workspace root until ctx is done.
func (a *AutoRefresher) Run(ctx context.Context) error {
	events, err := a.watcher.Watch(ctx, a.workspace.Root())
	if err != nil {
		return err
	}
	defer a.watcher.Stop()

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if _, supported := entities.FileTypeForExt(filepath.Ext(ev.Path)); !supported {
				continue
			}
			a.logger.Debug("codebase changed", zap.String("path", ev.Path), zap.Stringer("op", ev.Operation))
			if timer == nil {
				timer = time.NewTimer(a.debounce)
				pending = timer.C
			}

		case <-pending:
			timer, pending = nil, nil
			n, err := a.workspace.Refresh(ctx)
			if err != nil {
				a.logger.Warn("auto refresh failed", zap.Error(err))
				continue
			}
			if a.refreshed != nil {
				select {
				case a.refreshed <- n:
				default:
				}
			}
		}
	}
}
