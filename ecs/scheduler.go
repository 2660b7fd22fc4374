package ecs

import (
	"context"
	"math"
	"reflect"
	"time"
)

// SchedulerStats summarizes all systems a scheduler has run.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats holds execution statistics for one system. FixedStep is the
// fixed timestep the system runs on, or 0 for systems that run every frame.
type SystemStats struct {
	Name           string
	FixedStep      float64
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type scheduledSystem struct {
	system System
	stats  *systemStatsInternal
}

// fixedSet is a group of systems driven by one shared accumulator. The whole
// set runs, in registration order, once per elapsed step.
type fixedSet struct {
	step        float64
	accumulator float64
	systems     []scheduledSystem
}

// storageBinder is implemented by Query and Singleton; the Scheduler calls
// Init on any exported struct field of a registered system that satisfies it.
type storageBinder interface {
	Init(*Storage)
}

// queryRefresher is the Refresh side of Query. The Scheduler collects one
// per bound query field and refreshes them all at the start of every frame,
// before any system runs, so all systems see the same entity snapshot.
type queryRefresher interface {
	Refresh()
}

// Scheduler runs systems in registration order against one storage. Systems
// registered with Register run every frame; RegisterFixed groups systems
// onto a fixed timestep. Commands queued by any system are flushed once at
// the end of the frame.
type Scheduler struct {
	storage    *Storage
	frame      []scheduledSystem
	fixed      []*fixedSet
	refreshers []queryRefresher
}

// NewScheduler creates a scheduler for the given storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{storage: storage}
}

// Register adds a system that runs every frame. Query and Singleton fields
// of the system struct are bound to the scheduler's storage.
func (s *Scheduler) Register(system System) {
	s.bind(system)
	s.frame = append(s.frame, newScheduledSystem(system))
}

// RegisterFixed adds systems that run on a fixed timestep of step seconds,
// sharing one accumulator: each frame the accumulator grows by the frame's
// delta time, and the whole set runs once per step it contains, in the given
// order, with DeltaTime equal to step. A frame spanning several steps runs
// the set several times (catch-up); a short frame may not run it at all.
// Fixed sets run after the every-frame systems, in registration order.
func (s *Scheduler) RegisterFixed(step float64, systems ...System) {
	if step <= 0 || math.IsNaN(step) {
		panic("fixed timestep must be a positive number of seconds")
	}

	set := &fixedSet{step: step}
	for _, system := range systems {
		s.bind(system)
		set.systems = append(set.systems, newScheduledSystem(system))
	}
	s.fixed = append(s.fixed, set)
}

func newScheduledSystem(system System) scheduledSystem {
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}

	return scheduledSystem{
		system: system,
		stats: &systemStatsInternal{
			name:        systemType.Name(),
			minDuration: math.MaxInt64,
		},
	}
}

// bind initializes the system's exported Query and Singleton fields and
// collects its queries for the per-frame refresh.
func (s *Scheduler) bind(system System) {
	value := reflect.ValueOf(system)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return
	}

	structType := value.Type()
	for i := 0; i < value.NumField(); i++ {
		if !structType.Field(i).IsExported() {
			continue
		}
		if value.Field(i).Kind() != reflect.Struct {
			continue
		}

		field := value.Field(i).Addr().Interface()
		if binder, ok := field.(storageBinder); ok {
			binder.Init(s.storage)
		}
		if refresher, ok := field.(queryRefresher); ok {
			s.refreshers = append(s.refreshers, refresher)
		}
	}
}

// Once runs a single frame: refreshes all bound queries, executes the
// every-frame systems, drains the fixed sets, then flushes commands.
func (s *Scheduler) Once(dt float64) {
	frame := newUpdateFrame(dt, s.storage)

	for _, refresher := range s.refreshers {
		refresher.Refresh()
	}

	for i := range s.frame {
		runTimed(&s.frame[i], frame)
	}

	for _, set := range s.fixed {
		set.accumulator += dt
		for set.accumulator >= set.step {
			set.accumulator -= set.step
			stepFrame := frame.withDelta(set.step)
			for i := range set.systems {
				runTimed(&set.systems[i], stepFrame)
			}
		}
	}

	frame.Commands.Flush(s.storage)
}

func runTimed(entry *scheduledSystem, frame *UpdateFrame) {
	start := time.Now()
	entry.system.Execute(frame)
	duration := time.Since(start)

	stats := entry.stats
	stats.executionCount++
	stats.lastDuration = duration
	stats.totalDuration += duration
	if duration < stats.minDuration {
		stats.minDuration = duration
	}
	if duration > stats.maxDuration {
		stats.maxDuration = duration
	}
}

// Run drives Once from a ticker until the context is cancelled, passing the
// measured wall-clock delta between ticks.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns execution statistics for every registered system, the
// every-frame systems first and then each fixed set in registration order.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{}

	appendStats := func(entry *scheduledSystem, step float64) {
		internal := entry.stats

		out := SystemStats{
			Name:           internal.name,
			FixedStep:      step,
			ExecutionCount: internal.executionCount,
			MaxDuration:    internal.maxDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		if internal.executionCount > 0 {
			out.MinDuration = internal.minDuration
			out.AvgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems = append(stats.Systems, out)
		stats.TotalExecutions += internal.executionCount
		stats.SystemCount++
	}

	for i := range s.frame {
		appendStats(&s.frame[i], 0)
	}
	for _, set := range s.fixed {
		for i := range set.systems {
			appendStats(&set.systems[i], set.step)
		}
	}

	return stats
}
