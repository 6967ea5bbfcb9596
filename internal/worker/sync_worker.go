package worker

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trknhr/viterbi/internal/logger"
)

var ErrSyncFailed = errors.New("sync failed")

type SyncWorker interface {
	Key() string
	Path() string
	NeedsReload() bool
	Sync() error
}

// SyncReport lists worker keys by outcome, each sorted.
type SyncReport struct {
	Synced  []string
	Skipped []string
	Failed  []string
}

// RunSyncWorkers runs every worker concurrently, skipping up-to-date ones.
// A failing worker does not stop the others; the returned error names all
// failed keys.
func RunSyncWorkers(ctx context.Context, workers ...SyncWorker) (SyncReport, error) {
	var (
		mu     sync.Mutex
		report SyncReport
	)
	record := func(list *[]string, key string) {
		mu.Lock()
		defer mu.Unlock()
		*list = append(*list, key)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !w.NeedsReload() {
				logger.Debug("[%s] sync skipped (up-to-date)", w.Key())
				record(&report.Skipped, w.Key())
				return nil
			}
			if err := w.Sync(); err != nil {
				logger.Error("[%s] sync failed: %v", w.Key(), err)
				record(&report.Failed, w.Key())
				return nil
			}
			logger.Info("[%s] sync done", w.Key())
			record(&report.Synced, w.Key())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	sort.Strings(report.Synced)
	sort.Strings(report.Skipped)
	sort.Strings(report.Failed)
	if len(report.Failed) > 0 {
		return report, errors.Wrapf(ErrSyncFailed, "%s", strings.Join(report.Failed, ", "))
	}
	return report, nil
}

// LaunchSyncWorkers runs the workers in the background with a timeout.
func LaunchSyncWorkers(workers ...SyncWorker) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		if _, err := RunSyncWorkers(ctx, workers...); err != nil {
			logger.Error("background model sync failed: %v", err)
		}
	}()
}
