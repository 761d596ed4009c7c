package collections

import "taskdeck/internal/model"

// ToggleStatus builds the patch that flips a task between pending and completed. The server
// stamps or clears completed_at; the echo is normalized when it is applied locally.
func ToggleStatus(t model.Task) model.TaskPatch {
	if t.Status == model.StatusCompleted {
		return StatusPatch(model.StatusPending)
	}
	return StatusPatch(model.StatusCompleted)
}

func StatusPatch(status model.TaskStatus) model.TaskPatch {
	return model.TaskPatch{Status: &status}
}

// SetRecurrence builds a patch that turns recurrence on with pattern, or off when pattern is nil.
func SetRecurrence(pattern *model.Recurrence) model.TaskPatch {
	on := pattern != nil
	return model.TaskPatch{IsRecurring: &on, RecurrencePattern: pattern}
}
