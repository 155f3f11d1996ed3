package monitoring

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewGoroutineMonitor_Defaults(t *testing.T) {
	gm := NewGoroutineMonitor(zerolog.Nop(), 0, 0)
	assert.Equal(t, 30*time.Second, gm.checkInterval)
	assert.Equal(t, 1000, gm.alertThreshold)

	m := gm.GetMetrics()
	assert.Equal(t, m.Baseline, m.Current)
	assert.Equal(t, 0, m.Growth)
	assert.Equal(t, 0, m.Abandoned)
}

func TestGoroutineMonitor_CheckTracksPeak(t *testing.T) {
	gm := NewGoroutineMonitor(zerolog.Nop(), time.Hour, 1)

	release := make(chan struct{})
	for i := 0; i < 5; i++ {
		go func() { <-release }()
	}
	gm.Check()
	close(release)

	m := gm.GetMetrics()
	assert.GreaterOrEqual(t, m.Current, 6)
	assert.GreaterOrEqual(t, m.Peak, m.Current)
	assert.False(t, gm.lastAlert.IsZero(), "threshold of 1 should alert")
}

func TestGoroutineMonitor_Abandoned(t *testing.T) {
	gm := NewGoroutineMonitor(zerolog.Nop(), time.Hour, 0)

	gm.RecordAbandoned("slow")
	gm.RecordAbandoned("slow")
	gm.RecordAbandoned("stuck")

	m := gm.GetMetrics()
	assert.Equal(t, 3, m.Abandoned)
	assert.Equal(t, map[string]int{"slow": 2, "stuck": 1}, m.ByAgent)

	gm.AbandonedReturned("slow")
	gm.AbandonedReturned("stuck")
	gm.AbandonedReturned("never-recorded")

	m = gm.GetMetrics()
	assert.Equal(t, 1, m.Abandoned)
	assert.Equal(t, map[string]int{"slow": 1}, m.ByAgent)

	// The returned map is a copy
	m.ByAgent["slow"] = 99
	assert.Equal(t, 1, gm.GetMetrics().ByAgent["slow"])
}

func TestGoroutineMonitor_StartStop(t *testing.T) {
	gm := NewGoroutineMonitor(zerolog.Nop(), 5*time.Millisecond, 0)
	gm.Start()
	time.Sleep(20 * time.Millisecond)
	gm.Stop()
	assert.NotPanics(t, gm.Stop)
}
