package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Ulyk04/file-manager/internal/logging"
	"github.com/Ulyk04/file-manager/internal/metrics"
)

// DefaultRecentLimit is used when ScanRecent is called with a zero limit.
const DefaultRecentLimit = 50

// ScanRecent walks the whole tree outside the trash and returns up to
// limit files, most recently modified first. Files with equal timestamps
// keep walk order.
func (s *Store) ScanRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	start := time.Now()
	log := logging.WithContext(ctx)

	var files []Entry
	// Walk the resolved root: WalkDir does not descend into a root that is
	// itself a symlink.
	err := Walk(ctx, s.realRoot, s.isTrash, func(abs, rel string, d fs.DirEntry) error {
		if d.IsDir() || isUploadTemp(d.Name()) {
			return nil
		}

		var info fs.FileInfo
		var err error
		if d.Type()&fs.ModeSymlink != 0 {
			if err := s.checkContained(abs); err != nil {
				log.Warn("recent: skipping symlink", zap.String("path", rel), zap.Error(err))
				return nil
			}
			info, err = os.Stat(abs)
		} else {
			info, err = d.Info()
		}
		if err != nil {
			log.Warn("recent: skipping file", zap.String("path", rel), zap.Error(err))
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}
		e, _ := entryFromInfo(abs, s.realRoot, info)
		files = append(files, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.root, err)
	}

	metrics.RecordRecentScan(time.Since(start), len(files))

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModifiedAt.After(files[j].ModifiedAt)
	})
	if len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}
