// package profiler collects frame rate, glyph throughput and memory statistics for the render loop.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-text/engine/logging"
)

// Stats is a summary of the frames observed during one reporting interval.
type Stats struct {
	FPS float64
	// GlyphsPerFrame is the mean number of glyph instances drawn per frame.
	GlyphsPerFrame float64
	// HeapMB is the live heap size.
	HeapMB float64
	// AllocRateMB is the heap allocation rate in MB per second.
	AllocRateMB float64
	// GCCount is the total number of completed GC cycles.
	GCCount uint32
	// LastPauseUs and MaxPauseUs are the most recent and the longest GC pause of the interval.
	LastPauseUs, MaxPauseUs uint64
	SysMB                   float64
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	glyphCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	now            func() time.Time
	last           Stats
}

// ProfilerOption is a functional option used to configure a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often statistics are computed and logged.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - opts: a variadic list of ProfilerOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(opts ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame with the number of glyph instances drawn that frame.
// When the update interval has elapsed it computes, logs and returns the interval's statistics.
//
// Parameters:
//   - glyphs: the glyph instances drawn this frame
//
// Returns:
//   - Stats: the statistics of the interval that just ended, valid only when the bool is true
//   - bool: true if the interval elapsed on this tick
func (p *Profiler) Tick(glyphs int) (Stats, bool) {
	p.frameCount++
	p.glyphCount += glyphs
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:            float64(p.frameCount) / elapsed.Seconds(),
		GlyphsPerFrame: float64(p.glyphCount) / float64(p.frameCount),
		HeapMB:         float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:    float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:        p.memStats.NumGC,
		SysMB:          float64(p.memStats.Sys) / 1024 / 1024,
	}

	// PauseNs is a circular buffer of the last 256 GC pauses.
	if gcCount := s.GCCount; gcCount > 0 {
		s.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	logging.Debug("frame stats",
		"fps", s.FPS, "glyphs", s.GlyphsPerFrame, "heap_mb", s.HeapMB, "alloc_mb_s", s.AllocRateMB,
		"gc", s.GCCount, "gc_last_us", s.LastPauseUs, "gc_max_us", s.MaxPauseUs, "sys_mb", s.SysMB)

	p.frameCount = 0
	p.glyphCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.last = s
	return s, true
}

// Last returns the statistics of the most recently completed interval.
func (p *Profiler) Last() Stats {
	return p.last
}
