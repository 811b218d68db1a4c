/*
File Name:  scheduler.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Scheduler is a single-owner delayed-task queue (component i), ported from the
reference implementation's std::map<{time, serial}, Task> plus dequeue-while-due
loop. Ordering ties are broken by insertion serial rather than wall-clock
precision, exactly as the original's pair<time_point, int> key does. Tasks are
run synchronously from whichever goroutine calls Run/RunOne, normally the
node's own tick loop; a panicking task is recovered and logged, not propagated.
*/

package core

import (
	"container/heap"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskHandle identifies a scheduled task for Cancel.
type TaskHandle uuid.UUID

type scheduledTask struct {
	id     TaskHandle
	time   time.Time
	serial int
	fn     func()
	index  int
}

type taskHeap []*scheduledTask

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].time.Equal(h[j].time) {
		return h[i].serial < h[j].serial
	}
	return h[i].time.Before(h[j].time)
}
func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *taskHeap) Push(x interface{}) {
	task := x.(*scheduledTask)
	task.index = len(*h)
	*h = append(*h, task)
}
func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return task
}

// Scheduler is the delayed-task queue described in spec §4.7.
type Scheduler struct {
	node *Node

	mutex  sync.Mutex
	tasks  taskHeap
	byID   map[TaskHandle]*scheduledTask
	serial int
}

func newScheduler(node *Node) *Scheduler {
	return &Scheduler{node: node, byID: make(map[TaskHandle]*scheduledTask)}
}

// Schedule enqueues fn to run no earlier than delay from now.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) TaskHandle {
	return s.ScheduleAt(time.Now().Add(delay), fn)
}

// ScheduleAt enqueues fn to run no earlier than at.
func (s *Scheduler) ScheduleAt(at time.Time, fn func()) TaskHandle {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := TaskHandle(uuid.New())
	s.serial++
	task := &scheduledTask{id: id, time: at, serial: s.serial, fn: fn}
	heap.Push(&s.tasks, task)
	s.byID[id] = task
	return id
}

// Cancel removes a pending task, reporting whether it was still pending.
func (s *Scheduler) Cancel(id TaskHandle) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	task, ok := s.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&s.tasks, task.index)
	delete(s.byID, id)
	return true
}

// dequeue pops the earliest task if it is due, else returns nil.
func (s *Scheduler) dequeue() func() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.tasks) == 0 {
		return nil
	}
	if s.tasks[0].time.After(time.Now()) {
		return nil
	}

	task := heap.Pop(&s.tasks).(*scheduledTask)
	delete(s.byID, task.id)
	return task.fn
}

// RunOne runs at most one due task, reporting whether it ran one.
func (s *Scheduler) RunOne() bool {
	fn := s.dequeue()
	if fn == nil {
		return false
	}
	s.runTask(fn)
	return true
}

// Run drains every currently due task.
func (s *Scheduler) Run() {
	for s.RunOne() {
	}
}

func (s *Scheduler) runTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.node.logError("Scheduler.runTask", "recovered panic: %v", r)
		}
	}()
	fn()
}
