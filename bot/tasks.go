// Package bot implements the command router, daily task tracking and
// per-event message handling for the habitline LINE bot.
package bot

import (
	"math"
	"sync"
)

// TaskRecord is one habit's completion and note state for one day
type TaskRecord struct {
	Done bool
	Note string
}

// TaskView is a read-only snapshot row for display
type TaskView struct {
	Name string
	Done bool
	Note string
}

// DayStats summarizes one day's completion counts
type DayStats struct {
	Completed int
	Total     int
}

// Percent returns the rounded completion percentage.
// With a three-task roster only 0, 33, 67 and 100 are reachable.
func (s DayStats) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
}

// TaskStore maps calendar-day keys (YYYY-MM-DD) to that day's task records.
// State is in-process only; a restart discards all history. The day map
// grows one entry per distinct day touched and is never pruned.
//
// All access is serialized by a store-wide mutex; webhook events in one
// batch are handled concurrently and may touch the same day.
type TaskStore struct {
	mu    sync.Mutex
	names []string
	days  map[string]map[string]*TaskRecord
}

// NewTaskStore creates a store for a fixed task-name roster.
// The roster order is the display order.
func NewTaskStore(names []string) *TaskStore {
	roster := make([]string, len(names))
	copy(roster, names)
	return &TaskStore{
		names: roster,
		days:  make(map[string]map[string]*TaskRecord),
	}
}

// Names returns the configured roster in display order
func (s *TaskStore) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// EnsureDay initializes a day with one fresh record per configured task.
// Idempotent; an already-initialized day is left untouched.
func (s *TaskStore) EnsureDay(day string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureDayLocked(day)
}

func (s *TaskStore) ensureDayLocked(day string) map[string]*TaskRecord {
	if set, ok := s.days[day]; ok {
		return set
	}
	set := make(map[string]*TaskRecord, len(s.names))
	for _, name := range s.names {
		set[name] = &TaskRecord{}
	}
	s.days[day] = set
	return set
}

// MarkDone sets a task's done flag for the day
func (s *TaskStore) MarkDone(day, name string) {
	s.setDone(day, name, true)
}

// MarkUndone clears a task's done flag for the day
func (s *TaskStore) MarkUndone(day, name string) {
	s.setDone(day, name, false)
}

func (s *TaskStore) setDone(day, name string, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.ensureDayLocked(day)[name]; ok {
		rec.Done = done
	}
}

// SetNote overwrites a task's note for the day
func (s *TaskStore) SetNote(day, name, note string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.ensureDayLocked(day)[name]; ok {
		rec.Note = note
	}
}

// ClearNote empties a task's note for the day
func (s *TaskStore) ClearNote(day, name string) {
	s.SetNote(day, name, "")
}

// Snapshot returns the day's records in configured roster order
func (s *TaskStore) Snapshot(day string) []TaskView {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.ensureDayLocked(day)
	out := make([]TaskView, 0, len(s.names))
	for _, name := range s.names {
		rec := set[name]
		out = append(out, TaskView{Name: name, Done: rec.Done, Note: rec.Note})
	}
	return out
}

// Stats returns the day's completion counts.
// Total is always the configured roster size.
func (s *TaskStore) Stats(day string) DayStats {
	stats := DayStats{Total: len(s.names)}
	for _, view := range s.Snapshot(day) {
		if view.Done {
			stats.Completed++
		}
	}
	return stats
}

// DayCount returns how many distinct days have been touched
func (s *TaskStore) DayCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.days)
}
