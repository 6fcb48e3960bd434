package text

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-text/common"
)

const (
	// defaultParallelThreshold is the batch size below which glyphs are built on the calling goroutine.
	defaultParallelThreshold = 4096
	// defaultChunkSize is the number of glyphs handed to a single worker task.
	defaultChunkSize = 1024
	// poolQueueSize bounds the number of chunk tasks waiting for a worker.
	poolQueueSize = 256
)

// batchBuilder is the implementation of the BatchBuilder interface.
type batchBuilder struct {
	mu sync.Mutex

	// pool is created on the first batch large enough to be split and reused afterwards.
	pool    worker.DynamicWorkerPool
	workers int

	parallelThreshold int
	chunkSize         int
}

// BatchBuilder converts whole frames of glyphs into vertices. Small batches are built inline,
// large batches are split into contiguous chunks built on a reusable worker pool. The output order
// always matches the input order.
type BatchBuilder interface {
	// Build converts glyphs into vertices, reusing dst's backing array when it is large enough.
	//
	// Parameters:
	//   - dst: an optional slice to build into, may be nil
	//   - glyphs: the glyphs to convert
	//
	// Returns:
	//   - []Vertex: one vertex per glyph in input order, len(glyphs) long
	Build(dst []Vertex, glyphs []common.GlyphVertex) []Vertex

	// Workers returns the maximum number of goroutines a batch is split across.
	Workers() int

	// Release stops the worker pool. The builder keeps working inline afterwards.
	Release()
}

var _ BatchBuilder = &batchBuilder{}

// NewBatchBuilder creates a BatchBuilder. By default it uses one worker less than the number of CPUs.
//
// Parameters:
//   - opts: a variadic list of BatchBuilderOption functions
//
// Returns:
//   - BatchBuilder: the configured builder
func NewBatchBuilder(opts ...BatchBuilderOption) BatchBuilder {
	b := &batchBuilder{
		workers:           max(runtime.NumCPU()-1, 1),
		parallelThreshold: defaultParallelThreshold,
		chunkSize:         defaultChunkSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.workers = max(b.workers, 1)
	b.chunkSize = max(b.chunkSize, 1)
	return b
}

func (b *batchBuilder) Workers() int {
	return b.workers
}

func (b *batchBuilder) Build(dst []Vertex, glyphs []common.GlyphVertex) []Vertex {
	if cap(dst) < len(glyphs) {
		dst = make([]Vertex, len(glyphs))
	}
	dst = dst[:len(glyphs)]

	if b.workers == 1 || len(glyphs) < b.parallelThreshold {
		buildRange(dst, glyphs)
		return dst
	}

	pool := b.workerPool()
	if pool == nil {
		buildRange(dst, glyphs)
		return dst
	}

	// Each task writes a disjoint sub-slice of dst; the WaitGroup is the per-batch barrier.
	var wg sync.WaitGroup
	id := 0
	for start := 0; start < len(glyphs); start += b.chunkSize {
		end := min(start+b.chunkSize, len(glyphs))
		out, in := dst[start:end], glyphs[start:end]
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				buildRange(out, in)
				return nil, nil
			},
		})
		id++
	}
	wg.Wait()
	return dst
}

func (b *batchBuilder) workerPool() worker.DynamicWorkerPool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pool == nil && b.workers > 0 {
		b.pool = worker.NewDynamicWorkerPool(b.workers, poolQueueSize, 1*time.Second)
	}
	return b.pool
}

func (b *batchBuilder) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pool != nil {
		b.pool.Stop()
		b.pool = nil
	}
	b.workers = 1
}
