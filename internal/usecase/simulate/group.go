package simulate

import "sync"

// Group tracks the tasks an owner has scheduled so they can be cancelled
// together. Finished tasks are forgotten automatically.
type Group struct {
	mu    sync.Mutex
	tasks map[*Task]struct{}
	wg    sync.WaitGroup
}

// NewGroup returns an empty Group.
func NewGroup() *Group {
	return &Group{tasks: make(map[*Task]struct{})}
}

// Track adds t to the group and returns it.
func (g *Group) Track(t *Task) *Task {
	g.mu.Lock()
	g.tasks[t] = struct{}{}
	g.mu.Unlock()

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		<-t.Done()
		g.mu.Lock()
		delete(g.tasks, t)
		g.mu.Unlock()
	}()
	return t
}

// Len returns the number of tasks still pending.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for t := range g.tasks {
		select {
		case <-t.Done():
		default:
			n++
		}
	}
	return n
}

// CancelAll cancels every pending task and returns how many were stopped.
func (g *Group) CancelAll() int {
	g.mu.Lock()
	tasks := make([]*Task, 0, len(g.tasks))
	for t := range g.tasks {
		tasks = append(tasks, t)
	}
	g.mu.Unlock()

	n := 0
	for _, t := range tasks {
		if t.Cancel() {
			n++
		}
	}
	return n
}

// Close cancels every pending task and waits for the group's watchers to exit.
func (g *Group) Close() int {
	n := g.CancelAll()
	g.wg.Wait()
	return n
}
