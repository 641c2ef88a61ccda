package limiter

import (
	"runtime"
	"time"
)

// CPULimiter throttles hashing to a maximum CPU percentage. Hashing is the
// dominant cost of a run and saturates every core if left alone.
type CPULimiter struct {
	maxPercent float64
	lastSleep  time.Time
}

func NewCPULimiter(maxPercent float64) *CPULimiter {
	return &CPULimiter{
		maxPercent: maxPercent,
		lastSleep:  time.Now(),
	}
}

// Throttle sleeps between hash jobs to keep CPU usage near maxPercent.
// For exact control use cgroups or systemd limits; this keeps an interactive
// machine responsive, nothing more.
func (l *CPULimiter) Throttle() {
	if l.maxPercent <= 0 || l.maxPercent >= 100 {
		return
	}

	sleepPercent := 100.0 - l.maxPercent
	workTime := 10 * time.Millisecond
	sleepTime := time.Duration(float64(workTime) * (sleepPercent / l.maxPercent))

	if time.Since(l.lastSleep) > workTime {
		time.Sleep(sleepTime)
		l.lastSleep = time.Now()
	}

	runtime.Gosched()
}
