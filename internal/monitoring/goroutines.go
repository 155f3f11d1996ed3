package monitoring

import (
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// GoroutineMonitor tracks goroutine counts for a simulation run. Agent calls
// that overrun their budget are abandoned, not killed, so the monitor also
// counts abandoned agent goroutines that have not returned yet.
type GoroutineMonitor struct {
	mu             sync.RWMutex
	logger         zerolog.Logger
	baseline       int
	current        int
	peak           int
	checkInterval  time.Duration
	alertThreshold int
	lastAlert      time.Time
	alertCooldown  time.Duration
	stopChan       chan struct{}
	stopOnce       sync.Once
	abandoned      map[string]int
	abandonedTotal int
}

// NewGoroutineMonitor creates a new goroutine monitor. Non-positive interval
// or threshold fall back to 30s and 1000.
func NewGoroutineMonitor(logger zerolog.Logger, checkInterval time.Duration, alertThreshold int) *GoroutineMonitor {
	if checkInterval <= 0 {
		checkInterval = 30 * time.Second
	}
	if alertThreshold <= 0 {
		alertThreshold = 1000
	}
	baseline := runtime.NumGoroutine()
	return &GoroutineMonitor{
		logger:         logger.With().Str("component", "goroutine_monitor").Logger(),
		baseline:       baseline,
		current:        baseline,
		peak:           baseline,
		checkInterval:  checkInterval,
		alertThreshold: alertThreshold,
		alertCooldown:  5 * time.Minute,
		stopChan:       make(chan struct{}),
		abandoned:      make(map[string]int),
	}
}

// Start begins monitoring goroutines
func (gm *GoroutineMonitor) Start() {
	go gm.monitor()
	gm.logger.Info().
		Int("baseline", gm.baseline).
		Dur("interval", gm.checkInterval).
		Msg("Started goroutine monitoring")
}

// Stop stops the monitor. It is safe to call more than once.
func (gm *GoroutineMonitor) Stop() {
	gm.stopOnce.Do(func() { close(gm.stopChan) })
}

func (gm *GoroutineMonitor) monitor() {
	defer func() {
		if r := recover(); r != nil {
			gm.logger.Error().
				Interface("panic", r).
				Msg("Goroutine monitor panicked - restarting")
			time.Sleep(5 * time.Second)
			go gm.monitor()
		}
	}()

	ticker := time.NewTicker(gm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			gm.Check()
		case <-gm.stopChan:
			return
		}
	}
}

// Check samples the goroutine count and warns when it crosses the threshold
func (gm *GoroutineMonitor) Check() {
	current := runtime.NumGoroutine()

	gm.mu.Lock()
	gm.current = current
	if current > gm.peak {
		gm.peak = current
	}

	growth := current - gm.baseline
	growthRate := 0.0
	if gm.baseline > 0 {
		growthRate = float64(growth) / float64(gm.baseline) * 100
	}

	shouldAlert := current > gm.alertThreshold &&
		time.Since(gm.lastAlert) > gm.alertCooldown
	if shouldAlert {
		gm.lastAlert = time.Now()
	}
	peak := gm.peak
	abandoned := gm.abandonedTotal
	gm.mu.Unlock()

	gm.logger.Debug().
		Int("current", current).
		Int("baseline", gm.baseline).
		Int("peak", peak).
		Int("abandoned", abandoned).
		Float64("growth_rate", growthRate).
		Msg("Goroutine metrics")

	if shouldAlert {
		gm.logger.Warn().
			Int("current", current).
			Int("threshold", gm.alertThreshold).
			Int("abandoned", abandoned).
			Float64("growth_rate", growthRate).
			Msg("High goroutine count detected - possible leak")
	}
}

// RecordAbandoned notes that a call into agent overran its budget and its
// goroutine was left running.
func (gm *GoroutineMonitor) RecordAbandoned(agent string) {
	gm.mu.Lock()
	gm.abandoned[agent]++
	gm.abandonedTotal++
	gm.mu.Unlock()
}

// AbandonedReturned notes that an abandoned call into agent finally returned
func (gm *GoroutineMonitor) AbandonedReturned(agent string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	if gm.abandoned[agent] > 0 {
		gm.abandoned[agent]--
		gm.abandonedTotal--
	}
	if gm.abandoned[agent] == 0 {
		delete(gm.abandoned, agent)
	}
}

// GetMetrics returns current goroutine metrics
func (gm *GoroutineMonitor) GetMetrics() GoroutineMetrics {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	return GoroutineMetrics{
		Current:   gm.current,
		Baseline:  gm.baseline,
		Peak:      gm.peak,
		Growth:    gm.current - gm.baseline,
		Abandoned: gm.abandonedTotal,
		ByAgent:   copyMap(gm.abandoned),
	}
}

// GoroutineMetrics contains goroutine statistics
type GoroutineMetrics struct {
	Current   int            `json:"current"`
	Baseline  int            `json:"baseline"`
	Peak      int            `json:"peak"`
	Growth    int            `json:"growth"`
	Abandoned int            `json:"abandoned"`
	ByAgent   map[string]int `json:"abandoned_by_agent"`
}

func copyMap(m map[string]int) map[string]int {
	result := make(map[string]int, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
