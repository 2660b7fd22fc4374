package ecs

// System is a unit of behavior run by a Scheduler. Implementations are
// usually structs whose exported Query and Singleton fields are bound
// automatically at registration; unexported fields carry state between
// frames.
type System interface {
	Execute(frame *UpdateFrame)
}
