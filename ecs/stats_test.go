package ecs

import (
	"slices"
	"testing"
	"time"
)

func TestStorageStats(t *testing.T) {
	registry := NewComponentRegistry()
	RegisterComponent[int](registry)
	RegisterComponent[string](registry)
	RegisterComponent[float64](registry)

	storage := NewStorage(registry)

	stats := storage.CollectStats()
	if stats.ArchetypeCount != 0 {
		t.Errorf("expected 0 archetypes, got %d", stats.ArchetypeCount)
	}
	if stats.TotalEntityCount != 0 {
		t.Errorf("expected 0 entities, got %d", stats.TotalEntityCount)
	}
	if stats.SingletonCount != 0 {
		t.Errorf("expected 0 singletons, got %d", stats.SingletonCount)
	}

	storage.Spawn(42, "hello")
	storage.Spawn(100, "world")
	storage.Spawn(200.0, "test")

	NewSingleton[float64](storage, 3.14)
	NewSingleton[string](storage, "singleton")

	stats = storage.CollectStats()

	if stats.ArchetypeCount != 2 {
		t.Errorf("expected 2 archetypes, got %d", stats.ArchetypeCount)
	}

	if stats.TotalEntityCount != 3 {
		t.Errorf("expected 3 entities, got %d", stats.TotalEntityCount)
	}

	if stats.SingletonCount != 2 {
		t.Errorf("expected 2 singletons, got %d", stats.SingletonCount)
	}

	if len(stats.ArchetypeBreakdown) != 2 {
		t.Errorf("expected 2 archetype breakdown entries, got %d", len(stats.ArchetypeBreakdown))
	}

	foundIntString := false
	foundFloat64String := false
	for _, arch := range stats.ArchetypeBreakdown {
		if arch.EntityCount == 2 {
			foundIntString = true
		}
		if arch.EntityCount == 1 {
			foundFloat64String = true
		}
	}

	if !foundIntString || !foundFloat64String {
		t.Errorf("archetype breakdown incorrect: %+v", stats.ArchetypeBreakdown)
	}

	// The breakdown is ordered by archetype id so snapshots diff cleanly.
	for i := 1; i < len(stats.ArchetypeBreakdown); i++ {
		if stats.ArchetypeBreakdown[i-1].ID >= stats.ArchetypeBreakdown[i].ID {
			t.Errorf("breakdown not ordered by id: %+v", stats.ArchetypeBreakdown)
		}
	}

	if !slices.Equal(stats.SingletonTypes, []string{"float64", "string"}) {
		t.Errorf("expected sorted singleton types [float64 string], got %v", stats.SingletonTypes)
	}
}

func TestStorageStatsDeterministicIds(t *testing.T) {
	build := func() *StorageStats {
		registry := NewComponentRegistry()
		RegisterComponent[int](registry)
		RegisterComponent[string](registry)
		storage := NewStorage(registry)
		storage.Spawn(1, "a")
		storage.Spawn(2)
		return storage.CollectStats()
	}

	a := build()
	b := build()

	if len(a.ArchetypeBreakdown) != len(b.ArchetypeBreakdown) {
		t.Fatalf("expected equal breakdown lengths, got %d and %d", len(a.ArchetypeBreakdown), len(b.ArchetypeBreakdown))
	}
	for i := range a.ArchetypeBreakdown {
		if a.ArchetypeBreakdown[i].ID != b.ArchetypeBreakdown[i].ID {
			t.Errorf("archetype ids differ across storages: %d vs %d",
				a.ArchetypeBreakdown[i].ID, b.ArchetypeBreakdown[i].ID)
		}
	}
}

type TestSystem struct {
	executeCount int
	sleepDur     time.Duration
}

func (s *TestSystem) Execute(frame *UpdateFrame) {
	s.executeCount++
	if s.sleepDur > 0 {
		time.Sleep(s.sleepDur)
	}
}

func TestSchedulerStats(t *testing.T) {
	registry := NewComponentRegistry()
	storage := NewStorage(registry)
	scheduler := NewScheduler(storage)

	stats := scheduler.GetStats()
	if stats.SystemCount != 0 {
		t.Errorf("expected 0 systems, got %d", stats.SystemCount)
	}
	if stats.TotalExecutions != 0 {
		t.Errorf("expected 0 total executions, got %d", stats.TotalExecutions)
	}

	sys1 := &TestSystem{sleepDur: 1 * time.Millisecond}
	sys2 := &TestSystem{sleepDur: 2 * time.Millisecond}
	scheduler.Register(sys1)
	scheduler.Register(sys2)

	stats = scheduler.GetStats()
	if stats.SystemCount != 2 {
		t.Errorf("expected 2 systems, got %d", stats.SystemCount)
	}
	for _, sysStats := range stats.Systems {
		// Never executed: durations report as zero, not MaxInt64.
		if sysStats.MinDuration != 0 {
			t.Errorf("expected zero min duration before first run, got %v", sysStats.MinDuration)
		}
		if sysStats.AvgDuration != 0 {
			t.Errorf("expected zero avg duration before first run, got %v", sysStats.AvgDuration)
		}
	}

	scheduler.Once(0.016)
	scheduler.Once(0.016)
	scheduler.Once(0.016)

	stats = scheduler.GetStats()

	if stats.TotalExecutions != 6 {
		t.Errorf("expected 6 total executions (2 systems * 3 runs), got %d", stats.TotalExecutions)
	}

	if len(stats.Systems) != 2 {
		t.Errorf("expected 2 system stats, got %d", len(stats.Systems))
	}

	for _, sysStats := range stats.Systems {
		if sysStats.Name != "TestSystem" {
			t.Errorf("expected system name 'TestSystem', got '%s'", sysStats.Name)
		}

		if sysStats.FixedStep != 0 {
			t.Errorf("expected FixedStep 0 for frame system, got %f", sysStats.FixedStep)
		}

		if sysStats.ExecutionCount != 3 {
			t.Errorf("expected 3 executions, got %d", sysStats.ExecutionCount)
		}

		if sysStats.MinDuration == 0 {
			t.Errorf("expected non-zero min duration")
		}

		if sysStats.MaxDuration == 0 {
			t.Errorf("expected non-zero max duration")
		}

		if sysStats.AvgDuration == 0 {
			t.Errorf("expected non-zero avg duration")
		}

		if sysStats.LastDuration == 0 {
			t.Errorf("expected non-zero last duration")
		}

		if sysStats.TotalDuration == 0 {
			t.Errorf("expected non-zero total duration")
		}

		if sysStats.MinDuration > sysStats.AvgDuration {
			t.Errorf("min duration (%v) should be <= avg duration (%v)", sysStats.MinDuration, sysStats.AvgDuration)
		}

		if sysStats.AvgDuration > sysStats.MaxDuration {
			t.Errorf("avg duration (%v) should be <= max duration (%v)", sysStats.AvgDuration, sysStats.MaxDuration)
		}
	}

	if sys1.executeCount != 3 {
		t.Errorf("expected sys1 to execute 3 times, got %d", sys1.executeCount)
	}

	if sys2.executeCount != 3 {
		t.Errorf("expected sys2 to execute 3 times, got %d", sys2.executeCount)
	}
}

func TestSchedulerStatsFixedSystems(t *testing.T) {
	registry := NewComponentRegistry()
	storage := NewStorage(registry)
	scheduler := NewScheduler(storage)

	frameSys := &TestSystem{}
	fixedSys := &TestSystem{sleepDur: 1 * time.Millisecond}
	scheduler.Register(frameSys)
	scheduler.RegisterFixed(0.5, fixedSys)

	// Two frames of one second each: the frame system runs twice, the fixed
	// system four times.
	scheduler.Once(1.0)
	scheduler.Once(1.0)

	stats := scheduler.GetStats()

	if stats.SystemCount != 2 {
		t.Fatalf("expected 2 systems, got %d", stats.SystemCount)
	}
	if stats.TotalExecutions != 6 {
		t.Errorf("expected 6 total executions, got %d", stats.TotalExecutions)
	}

	// Frame systems come first, then fixed sets in registration order.
	frameStats := stats.Systems[0]
	fixedStats := stats.Systems[1]

	if frameStats.FixedStep != 0 {
		t.Errorf("expected frame system FixedStep 0, got %f", frameStats.FixedStep)
	}
	if frameStats.ExecutionCount != 2 {
		t.Errorf("expected 2 frame executions, got %d", frameStats.ExecutionCount)
	}

	if fixedStats.FixedStep != 0.5 {
		t.Errorf("expected fixed system FixedStep 0.5, got %f", fixedStats.FixedStep)
	}
	if fixedStats.ExecutionCount != 4 {
		t.Errorf("expected 4 fixed executions, got %d", fixedStats.ExecutionCount)
	}
}
