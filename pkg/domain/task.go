package domain

// TaskID is the opaque identity the fabric assigns to a task at
// submission time.
type TaskID string

// TaskState is the lifecycle state of a task as reported by the fabric.
type TaskState string

const (
	// TaskQueued means the task is waiting for the fabric to pick it up.
	// Newly submitted tasks that the fabric has not reported on yet are
	// also classified as queued.
	TaskQueued TaskState = "queued"

	// TaskRunning means the fabric is currently executing the task.
	TaskRunning TaskState = "running"

	// TaskComplete means the task finished and has a result record.
	TaskComplete TaskState = "complete"

	// TaskErrored means the task failed. Errored tasks are eligible for
	// an explicit operator restart and nothing else.
	TaskErrored TaskState = "error"

	// TaskInvalid is terminal and unrecoverable; invalid tasks are never
	// restarted and are permanently excluded from aggregation.
	TaskInvalid TaskState = "invalid"
)

// Valid reports whether s is one of the five known states.
func (s TaskState) Valid() bool {
	switch s {
	case TaskQueued, TaskRunning, TaskComplete, TaskErrored, TaskInvalid:
		return true
	}
	return false
}

// Terminal reports whether the fabric will never move the task out of
// this state on its own. Errored tasks can still leave via an explicit
// restart; invalid tasks cannot.
func (s TaskState) Terminal() bool {
	return s == TaskComplete || s == TaskInvalid
}

// TaskRef is the handle-side record of one created task: which
// experiment repeat it executes and whether queueing it succeeded.
type TaskRef struct {
	ID         TaskID        `json:"id,omitempty"`
	Experiment ExperimentKey `json:"experiment"`
	Repeat     int           `json:"repeat"`

	// QueueError holds the per-task failure message when the fabric
	// rejected creating or queueing this task. Such refs carry no
	// usable task and are excluded from status, restart and gather.
	QueueError string `json:"queue_error,omitempty"`
}

// Usable reports whether the ref points at a live fabric task.
func (r TaskRef) Usable() bool {
	return r.ID != "" && r.QueueError == ""
}
