package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/leakguard-io/leakguard/internal/admission"
	"github.com/leakguard-io/leakguard/internal/rules"
)

// WalkRoot scans every regular file under root with the given number of
// workers. Detection is side-effect-free per file, so files are scanned in
// parallel with no shared mutable state; results are sorted by path before
// returning so the output order is stable regardless of scheduling.
func WalkRoot(logger hclog.Logger, gate *admission.Gate, ruleSet []rules.Rule, root string, threads int) ([]Result, error) {
	if threads < 1 {
		threads = 1
	}

	paths := make(chan string)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				results <- ScanFile(gate, ruleSet, root, path)
			}
		}()
	}

	var walkErr error
	go func() {
		defer close(paths)
		walkErr = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// One unreadable entry must not abort the rest of the walk.
				logger.Warn("failed to access path", "path", path, "error", err)
				return nil
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			paths <- path
			return nil
		})
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []Result
	for result := range results {
		if result.Skipped() {
			logger.Debug("file skipped", "file", result.File, "reason", result.Skip.String())
		}
		all = append(all, result)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].File < all[j].File })

	return all, walkErr
}
