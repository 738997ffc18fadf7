// Package snapshot keeps the client's in-memory copy of assignments and
// courses. Reloads replace the whole copy; local edits are applied
// optimistically and reconciled by the next reload.
package snapshot

import (
	"sort"
	"sync"

	"github.com/marcus/studysync/internal/models"
)

// Store is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	assignments []models.Assignment
	courses     []models.Course
	loaded      bool
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// ReplaceAssignments swaps in a fresh assignment list.
func (s *Store) ReplaceAssignments(list []models.Assignment) {
	cp := append([]models.Assignment(nil), list...)
	sortByDue(cp)
	s.mu.Lock()
	s.assignments = cp
	s.loaded = true
	s.mu.Unlock()
}

// ReplaceCourses swaps in a fresh course list.
func (s *Store) ReplaceCourses(list []models.Course) {
	cp := append([]models.Course(nil), list...)
	s.mu.Lock()
	s.courses = cp
	s.mu.Unlock()
}

// Loaded reports whether assignments have been fetched at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Assignments returns a copy of the assignment list, sorted by due date.
func (s *Store) Assignments() []models.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Assignment(nil), s.assignments...)
}

// Courses returns a copy of the course list.
func (s *Store) Courses() []models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Course(nil), s.courses...)
}

// Len returns the number of assignments held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assignments)
}

// Assignment looks up an assignment by id.
func (s *Store) Assignment(id string) (models.Assignment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assignments {
		if a.ID == id {
			return a, true
		}
	}
	return models.Assignment{}, false
}

// Course looks up a course by name.
func (s *Store) Course(name string) (models.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.courses {
		if c.Name == name {
			return c, true
		}
	}
	return models.Course{}, false
}

// Upsert inserts or replaces a by id, keeping due-date order. Sync progress
// events use it to show new assignments as they arrive.
func (s *Store) Upsert(a models.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assignments {
		if s.assignments[i].ID == a.ID {
			s.assignments[i] = a
			sortByDue(s.assignments)
			return
		}
	}
	s.assignments = append(s.assignments, a)
	sortByDue(s.assignments)
}

// Update applies fn to the assignment with id. It reports whether it was found.
func (s *Store) Update(id string, fn func(*models.Assignment)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assignments {
		if s.assignments[i].ID == id {
			fn(&s.assignments[i])
			return true
		}
	}
	return false
}

// Remove drops the assignment with id.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assignments {
		if s.assignments[i].ID == id {
			s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)
			return
		}
	}
}

// UpdateCourse applies fn to the course named name.
func (s *Store) UpdateCourse(name string, fn func(*models.Course)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.courses {
		if s.courses[i].Name == name {
			fn(&s.courses[i])
			return true
		}
	}
	return false
}

// ByCourse returns the ids of every assignment in course.
func (s *Store) ByCourse(course string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, a := range s.assignments {
		if a.CourseName == course {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// Filter describes a list view.
type Filter struct {
	Course        string
	ShowCompleted bool
}

// Select returns assignments matching f.
func (s *Store) Select(f Filter) []models.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Assignment
	for _, a := range s.assignments {
		if a.Deleted {
			continue
		}
		if f.Course != "" && a.CourseName != f.Course {
			continue
		}
		if !f.ShowCompleted && a.IsCompleted() {
			continue
		}
		out = append(out, a)
	}
	return out
}

func sortByDue(list []models.Assignment) {
	sort.SliceStable(list, func(i, j int) bool {
		di, okI := list[i].Due()
		dj, okJ := list[j].Due()
		switch {
		case okI && okJ:
			return di.Before(dj)
		case okI != okJ:
			return okI
		}
		return list[i].Title < list[j].Title
	})
}
