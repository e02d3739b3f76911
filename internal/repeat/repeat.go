// Package repeat turns a press-and-hold gesture on a stepper control into
// a sequence of value updates that speeds up the longer the control is
// held.
package repeat

import (
	"math"
	"sync"
	"time"
)

const (
	DefaultInitialDelay    = 400 * time.Millisecond
	DefaultBaseInterval    = 80 * time.Millisecond
	DefaultFastInterval    = 40 * time.Millisecond
	DefaultFastestInterval = 15 * time.Millisecond
	DefaultFastAfter       = 10
	DefaultFastestAfter    = 30

	valueDecimals = 3
)

// Direction of a press.
type Direction int

const (
	Increment Direction = iota
	Decrement
)

func (d Direction) String() string {
	if d == Decrement {
		return "decrement"
	}
	return "increment"
}

// Phase of the controller state machine.
type Phase int

const (
	Idle Phase = iota
	Armed
	Repeating
)

func (p Phase) String() string {
	switch p {
	case Armed:
		return "armed"
	case Repeating:
		return "repeating"
	}
	return "idle"
}

// Timer is a pending scheduled call.
type Timer interface {
	// Stop prevents the call from running. It reports whether the call
	// was still pending.
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemScheduler schedules on the wall clock.
type SystemScheduler struct{}

func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Config controls the repeat timing.
type Config struct {
	InitialDelay    time.Duration
	BaseInterval    time.Duration
	FastInterval    time.Duration
	FastestInterval time.Duration
	// FastAfter and FastestAfter are the repeat counts after which the
	// fast and fastest intervals apply.
	FastAfter    int
	FastestAfter int
}

// DefaultConfig returns the stock timing: 400ms before repeating, then
// every 80ms, every 40ms after 10 repeats and every 15ms after 30.
func DefaultConfig() Config {
	return Config{
		InitialDelay:    DefaultInitialDelay,
		BaseInterval:    DefaultBaseInterval,
		FastInterval:    DefaultFastInterval,
		FastestInterval: DefaultFastestInterval,
		FastAfter:       DefaultFastAfter,
		FastestAfter:    DefaultFastestAfter,
	}
}

// interval returns the delay before the next repeat once repeats
// updates were emitted.
func (c Config) interval(repeats int) time.Duration {
	switch {
	case repeats >= c.FastestAfter:
		return c.FastestInterval
	case repeats >= c.FastAfter:
		return c.FastInterval
	}
	return c.BaseInterval
}

type press struct {
	direction Direction
	step      float64
	phase     Phase
	repeats   int
	interval  time.Duration
	timer     Timer
}

// Controller drives one stepper control. The value it adjusts is owned
// elsewhere: each update reads it through the value accessor and hands
// the new value to emit, so out-of-band changes are never overwritten
// with a stale snapshot.
//
// At most one timer is pending per Controller. Release and Press
// invalidate it atomically, and a timer that fires after being
// invalidated emits nothing. emit runs with the controller locked and
// must not call back into the Controller.
type Controller struct {
	cfg   Config
	sched Scheduler
	value func() float64
	emit  func(float64)

	mu    sync.Mutex
	gen   uint64
	state *press
}

// New returns an idle Controller.
func New(cfg Config, sched Scheduler, value func() float64, emit func(float64)) *Controller {
	return &Controller{
		cfg:   cfg,
		sched: sched,
		value: value,
		emit:  emit,
	}
}

// Press starts a gesture: one update is emitted right away and repeating
// starts after the initial delay. A gesture already in progress is
// cancelled first.
func (c *Controller) Press(direction Direction, step float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.state = &press{
		direction: direction,
		step:      step,
		phase:     Armed,
		interval:  c.cfg.InitialDelay,
	}
	c.emitLocked()
	c.scheduleLocked()
}

// Release ends the gesture. No update is emitted afterwards, including
// from a timer that was already due. Releasing an idle controller is a
// no-op.
func (c *Controller) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

// Phase returns the current state machine phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return Idle
	}
	return c.state.phase
}

// Repeats returns how many repeat updates the current gesture emitted,
// not counting the initial one.
func (c *Controller) Repeats() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return 0
	}
	return c.state.repeats
}

func (c *Controller) cancelLocked() {
	c.gen++
	if c.state != nil && c.state.timer != nil {
		c.state.timer.Stop()
	}
	c.state = nil
}

func (c *Controller) scheduleLocked() {
	gen := c.gen
	c.state.timer = c.sched.AfterFunc(c.state.interval, func() {
		c.fire(gen)
	})
}

func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.state == nil {
		return
	}

	switch c.state.phase {
	case Armed:
		c.state.phase = Repeating
		c.state.interval = c.cfg.BaseInterval
	case Repeating:
		c.emitLocked()
		c.state.repeats++
		c.state.interval = c.cfg.interval(c.state.repeats)
	}
	c.scheduleLocked()
}

func (c *Controller) emitLocked() {
	delta := c.state.step
	if c.state.direction == Decrement {
		delta = -delta
	}
	c.emit(Next(c.value(), delta))
}

// Next applies delta to current, flooring at 0 and rounding to three
// decimals.
func Next(current, delta float64) float64 {
	factor := math.Pow(10, valueDecimals)
	return math.Round(math.Max(0, current+delta)*factor) / factor
}
