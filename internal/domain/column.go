package domain

// Column is an ordered bucket of tasks. Append position is the end.
type Column struct {
	ID    string
	Title string
	Tasks []Task
}

// NewColumn constructs an empty column.
func NewColumn(id, title string) Column {
	return Column{ID: id, Title: title, Tasks: []Task{}}
}

// Len returns the number of tasks.
func (c Column) Len() int {
	return len(c.Tasks)
}

// Append adds task to the end of the column.
func (c *Column) Append(task Task) {
	c.Tasks = append(c.Tasks, task)
}

// IndexOf returns the position of the task with id, or -1.
func (c Column) IndexOf(id string) int {
	for idx := range c.Tasks {
		if c.Tasks[idx].ID == id {
			return idx
		}
	}
	return -1
}

// RemoveByID removes and returns the task with id. A miss is not an error.
func (c *Column) RemoveByID(id string) (Task, bool) {
	idx := c.IndexOf(id)
	if idx < 0 {
		return Task{}, false
	}
	return c.removeAt(idx), true
}

// Find returns a copy of the task with id.
func (c Column) Find(id string) (Task, bool) {
	idx := c.IndexOf(id)
	if idx < 0 {
		return Task{}, false
	}
	return c.Tasks[idx], true
}

// FindMut returns a pointer to the stored task with id.
// The pointer is invalidated by any later insert or removal in this column.
func (c *Column) FindMut(id string) (*Task, bool) {
	idx := c.IndexOf(id)
	if idx < 0 {
		return nil, false
	}
	return &c.Tasks[idx], true
}

func (c *Column) removeAt(idx int) Task {
	task := c.Tasks[idx]
	c.Tasks = append(c.Tasks[:idx], c.Tasks[idx+1:]...)
	return task
}

func (c *Column) insertAt(idx int, task Task) {
	if idx < 0 || idx > len(c.Tasks) {
		idx = len(c.Tasks)
	}
	c.Tasks = append(c.Tasks, Task{})
	copy(c.Tasks[idx+1:], c.Tasks[idx:])
	c.Tasks[idx] = task
}
