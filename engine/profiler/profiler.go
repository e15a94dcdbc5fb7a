package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler tracks frame rate, shader compile timings, and memory statistics for the live loop.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	compiles       int
	failedCompiles int
	compileTime    time.Duration

	now  func() time.Time
	logf func(format string, args ...any)
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second and output goes to log.Printf.
//
// Parameters:
//   - options: optional ProfilerOption values
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
		now:            time.Now,
		logf:           log.Printf,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// RecordCompile adds one shader compile to the current interval.
//
// Parameters:
//   - d: how long the compile took
//   - ok: whether it produced a program
func (p *Profiler) RecordCompile(d time.Duration, ok bool) {
	p.compiles++
	p.compileTime += d
	if !ok {
		p.failedCompiles++
	}
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, compiles in the interval, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap bytes. TotalAlloc: cumulative, tracks churn. Sys: process footprint.
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()
	gcCount := p.memStats.NumGC
	lastPauseUs, maxPauseUs := p.gcPauses(gcCount)

	var avgCompile time.Duration
	if p.compiles > 0 {
		avgCompile = p.compileTime / time.Duration(p.compiles)
	}

	p.logf("[Profiler] FPS: %.2f | Compiles: %d (failed: %d, avg: %s) | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		fps, p.compiles, p.failedCompiles, avgCompile.Round(time.Microsecond), allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.compiles = 0
	p.failedCompiles = 0
	p.compileTime = 0
	return true
}

// gcPauses returns the most recent GC pause and the longest pause since the last report, in µs.
func (p *Profiler) gcPauses(gcCount uint32) (uint64, uint64) {
	if gcCount == 0 {
		return 0, 0
	}
	// PauseNs is a circular buffer of the last 256 pauses
	lastPauseUs := p.memStats.PauseNs[(gcCount-1)%256] / 1000

	var maxPauseUs uint64
	startIdx := p.lastGCCount
	if gcCount-startIdx > 256 {
		startIdx = gcCount - 256
	}
	for i := startIdx; i < gcCount; i++ {
		if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxPauseUs {
			maxPauseUs = pause
		}
	}
	return lastPauseUs, maxPauseUs
}
