package text

// BatchBuilderOption is a functional option used to configure a BatchBuilder during construction.
type BatchBuilderOption func(*batchBuilder)

// WithWorkers sets the maximum number of goroutines a batch is split across. One disables the pool.
//
// Parameters:
//   - n: the worker count, values below one are treated as one
//
// Returns:
//   - BatchBuilderOption: a function that sets the worker count
func WithWorkers(n int) BatchBuilderOption {
	return func(b *batchBuilder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithParallelThreshold sets the smallest batch that is split across the worker pool.
//
// Parameters:
//   - n: the glyph count threshold
//
// Returns:
//   - BatchBuilderOption: a function that sets the threshold
func WithParallelThreshold(n int) BatchBuilderOption {
	return func(b *batchBuilder) {
		if n > 0 {
			b.parallelThreshold = n
		}
	}
}

// WithChunkSize sets the number of glyphs built by a single worker task.
func WithChunkSize(n int) BatchBuilderOption {
	return func(b *batchBuilder) {
		if n > 0 {
			b.chunkSize = n
		}
	}
}
