package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zynbuild/zyn/internal/layout"
)

// Clean removes build outputs: every dependency build directory, the
// rebuild cache and any extra directories given. With all set the
// dependency checkouts go too. Lock records are never removed. It returns
// the directories that existed and were removed.
func (o *Orchestrator) Clean(ctx context.Context, all bool, extra ...string) ([]string, error) {
	targets := []string{o.Layout.BuildDir(), o.Layout.CacheDir()}
	if all {
		targets = append(targets, o.Layout.DepsDir())
	}
	targets = append(targets, extra...)

	var (
		mu      sync.Mutex
		removed []string
	)
	log := o.logger("clean")

	lockDir, err := filepath.Abs(o.Layout.LockDir())
	if err != nil {
		return nil, fmt.Errorf("resolving lock directory: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, dir := range targets {
		if _, err := layout.Within(dir, lockDir); err == nil {
			log.Warn("not removing a directory that holds lock records", "path", dir)
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("removing %s: %w", dir, err)
			}
			log.Info("removed", "path", dir)
			mu.Lock()
			removed = append(removed, dir)
			mu.Unlock()
			return nil
		})
	}
	err = g.Wait()
	sort.Strings(removed)
	return removed, err
}
