package cleanup

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/italolelis/football_logos/internal/logctx"
)

const partSuffix = ".part"

// RemoveStalePartials deletes *.part files under root whose modification
// time is older than olderThan. They are leftovers of interrupted downloads
// and are never treated as complete files. It returns the number removed.
func RemoveStalePartials(ctx context.Context, root string, olderThan time.Duration) (int, error) {
	logger := logctx.LoggerFromContext(ctx)
	now := time.Now()
	removed := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil // root not created yet
			}

			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() || !strings.HasSuffix(d.Name(), partSuffix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil // already deleted
			}

			return err
		}

		if now.Sub(info.ModTime()) <= olderThan {
			return nil
		}

		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Error("Failed to delete stale partial file", "file", path, "err", err)

			return err
		}

		logger.Debug("Deleted stale partial file", "file", path)

		removed++

		return nil
	})

	return removed, err
}
