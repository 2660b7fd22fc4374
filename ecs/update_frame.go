package ecs

// UpdateFrame carries everything a system needs for one execution: the delta
// time it should integrate over, the frame's shared command buffer, and the
// storage for direct reads.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	Storage   *Storage
}

func newUpdateFrame(dt float64, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  newCommands(),
		Storage:   storage,
	}
}

// withDelta returns a frame with a different delta time but the same command
// buffer and storage. Fixed-timestep systems see their step as DeltaTime
// while still queueing into the frame's single flush.
func (f *UpdateFrame) withDelta(dt float64) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  f.Commands,
		Storage:   f.Storage,
	}
}
