package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/melodist/melodist/compose"
	"github.com/melodist/melodist/model"
	"github.com/melodist/melodist/store"
)

const defaultWorkers = 4

// Options controls how a batch run executes and where output lands.
type Options struct {
	Workers int
	OutDir  string

	// Uploader, when set, additionally publishes every rendered file.
	Uploader *store.Uploader
}

// JobResult records the outcome of one job. Err is per-job; one failing
// job never stops the others.
type JobResult struct {
	Index int
	Path  string
	Seed  int64
	Err   error
}

// Run generates every job concurrently over a bounded worker pool. Each
// job composes with its own RNG, so results are independent of scheduling
// order. Output files are named by fresh UUIDs under opts.OutDir.
func Run(log *zap.Logger, jobs []model.GenerateParams, opts Options) ([]JobResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w: no jobs", model.ErrInvalidLength)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create output dir: %w", err)
	}

	results := make([]JobResult, len(jobs))
	indices := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				results[i] = runJob(log, i, jobs[i], opts)
			}
		}()
	}
	for i := range jobs {
		indices <- i
	}
	close(indices)
	wg.Wait()

	return results, nil
}

func runJob(log *zap.Logger, index int, params model.GenerateParams, opts Options) JobResult {
	res := JobResult{Index: index}

	composed, err := compose.Compose(log, params)
	if err != nil {
		res.Err = err
		log.Warn("job failed", zap.Int("job", index), zap.Error(err))
		return res
	}
	res.Seed = composed.Seed

	name := uuid.New().String() + ".mid"
	res.Path = filepath.Join(opts.OutDir, name)
	if err := composed.Timeline.WriteFile(res.Path); err != nil {
		res.Err = err
		log.Warn("job failed", zap.Int("job", index), zap.Error(err))
		return res
	}

	if opts.Uploader != nil {
		data, err := composed.Timeline.Bytes()
		if err == nil {
			err = opts.Uploader.Upload(name, data)
		}
		if err != nil {
			// the local file is already written; publishing is best effort
			log.Warn("upload failed", zap.Int("job", index), zap.Error(err))
		}
	}

	log.Info("job done", zap.Int("job", index), zap.String("path", res.Path), zap.Int64("seed", res.Seed))
	return res
}
