package profiler

import (
	"log"
	"runtime"
	"sync"
	"time"
)

// Sample is one reporting window's frame and memory statistics.
type Sample struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64 // MB allocated per second over the window
	GCCount     uint32
	LastPause   time.Duration
	MaxPause    time.Duration // longest GC pause inside the window
	SysMB       float64
}

// Profiler counts frames and logs a Sample once per interval.
type Profiler struct {
	mu *sync.Mutex

	interval time.Duration
	now      func() time.Time
	quiet    bool

	frames         int
	last           time.Time
	mem            runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a Profiler that reports once per second unless configured otherwise.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		mu:       &sync.Mutex{},
		interval: time.Second,
		now:      time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.last = p.now()
	return p
}

// Tick counts one frame. When the interval has elapsed it reads the memory statistics,
// logs them and starts a new window.
//
// Returns:
//   - Sample: the finished window's statistics, zero if none finished
//   - bool: true if a window finished this tick
func (p *Profiler) Tick() (Sample, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frames++
	current := p.now()
	elapsed := current.Sub(p.last)
	if elapsed < p.interval || elapsed <= 0 {
		return Sample{}, false
	}

	runtime.ReadMemStats(&p.mem)
	s := Sample{
		FPS:         float64(p.frames) / elapsed.Seconds(),
		HeapMB:      toMB(p.mem.Alloc),
		AllocRateMB: toMB(p.mem.TotalAlloc-p.lastTotalAlloc) / elapsed.Seconds(),
		GCCount:     p.mem.NumGC,
		SysMB:       toMB(p.mem.Sys),
	}
	s.LastPause, s.MaxPause = pauses(&p.mem, p.lastGCCount)

	if !p.quiet {
		log.Printf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			s.FPS, s.HeapMB, s.AllocRateMB, s.GCCount, s.LastPause.Microseconds(), s.MaxPause.Microseconds(), s.SysMB)
	}

	p.frames = 0
	p.last = current
	p.lastGCCount = p.mem.NumGC
	p.lastTotalAlloc = p.mem.TotalAlloc
	return s, true
}

// pauses reads the latest GC pause and the longest pause since the GC count `since`.
// PauseNs is a ring of the last 256 pauses.
func pauses(m *runtime.MemStats, since uint32) (last, longest time.Duration) {
	n := m.NumGC
	if n == 0 {
		return 0, 0
	}
	last = time.Duration(m.PauseNs[(n-1)%256])
	start := since
	if n-start > 256 {
		start = n - 256
	}
	for i := start; i < n; i++ {
		if d := time.Duration(m.PauseNs[i%256]); d > longest {
			longest = d
		}
	}
	return last, longest
}

func toMB(b uint64) float64 {
	return float64(b) / 1024 / 1024
}
