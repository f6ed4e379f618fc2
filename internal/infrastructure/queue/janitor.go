package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidtube/backend/internal/core/ports"
	"github.com/vidtube/backend/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	deleteTimeout  = 30 * time.Second
)

// Janitor deletes replaced or orphaned media assets in the background. URLs
// are sharded across a fixed set of workers by hash, so repeated discards of
// the same asset are handled by one worker in order.
type Janitor struct {
	workers []chan string
	store   ports.MediaStore
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewJanitor creates a Janitor with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewJanitor(numWorkers int, store ports.MediaStore, log zerolog.Logger) *Janitor {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	j := &Janitor{
		workers: make([]chan string, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range j.workers {
		j.workers[i] = make(chan string, channelBuffer)
	}
	return j
}

// Start launches the workers. They exit when ctx is cancelled or after Stop
// has drained their queues.
func (j *Janitor) Start(ctx context.Context) {
	for i, ch := range j.workers {
		j.wg.Add(1)
		go j.runWorker(ctx, i, ch)
	}
}

// Discard queues urls for deletion without blocking the caller. Empty URLs are
// ignored; when a worker queue is full the asset is left in place and logged.
func (j *Janitor) Discard(urls ...string) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	for _, url := range urls {
		if url == "" {
			continue
		}
		if j.closed {
			j.log.Warn().Str("url", url).Msg("janitor stopped, asset left in place")
			continue
		}
		idx := j.shardIndex(url)
		select {
		case j.workers[idx] <- url:
			metrics.MediaCleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(j.workers[idx])))
		default:
			j.log.Warn().Str("url", url).Int("worker_id", idx).Msg("cleanup queue full, asset left in place")
		}
	}
}

// Stop refuses further discards and waits for queued deletions to finish.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		for _, ch := range j.workers {
			close(ch)
		}
	}
	j.mu.Unlock()
	j.wg.Wait()
}

// shardIndex maps a URL deterministically to a worker index.
func (j *Janitor) shardIndex(url string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(url))
	return int(h.Sum32() % uint32(len(j.workers)))
}

func (j *Janitor) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer j.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case url, ok := <-ch:
			if !ok {
				return
			}
			metrics.MediaCleanupQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			j.delete(ctx, id, url)
		}
	}
}

func (j *Janitor) delete(ctx context.Context, worker int, url string) {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	start := time.Now()
	err := j.store.Delete(ctx, url)
	result := "ok"
	if err != nil {
		result = "error"
		j.log.Error().Err(err).
			Str("url", url).
			Int("worker_id", worker).
			Msg("asset deletion failed")
	}
	metrics.MediaCleanupDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
