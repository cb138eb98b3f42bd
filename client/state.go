package client

// The functions below never modify their input slice.

// Prepend returns tasks with t at the front.
func Prepend(tasks []Task, t Task) []Task {
	out := make([]Task, 0, len(tasks)+1)
	out = append(out, t)
	return append(out, tasks...)
}

// Replace returns tasks with the entry matching t.ID replaced in place.
// If no entry matches, the result equals tasks.
func Replace(tasks []Task, t Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	for i := range out {
		if out[i].ID == t.ID {
			out[i] = t
		}
	}
	return out
}

// Remove returns tasks without the entry with the given id.
func Remove(tasks []Task, id int) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// Partition splits tasks into pending and completed, keeping relative order.
func Partition(tasks []Task) (pending, completed []Task) {
	pending = make([]Task, 0, len(tasks))
	completed = make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == StatusCompleted {
			completed = append(completed, t)
		} else {
			pending = append(pending, t)
		}
	}
	return pending, completed
}

// Find returns the task with the given id.
func Find(tasks []Task, id int) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
