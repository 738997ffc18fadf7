// Package fakeapi is an in-memory stand-in for the tracker backend, used by
// tests of the client and the actions layer.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/marcus/studysync/internal/models"
)

// Failure is an injected response for one route.
type Failure struct {
	Status  int
	Message string
}

// Server holds backend state. Fields may be set directly before the server
// handles requests; afterwards use the methods.
type Server struct {
	mu sync.Mutex

	assignments []*models.Assignment
	courses     []models.Course
	settings    models.Settings
	insights    *models.Insights
	insightsEnd string

	// SyncEvents are streamed by /api/sync. Progress events carrying an
	// assignment also insert it.
	SyncEvents []models.SyncEvent
	// CutStream ends the sync stream without a terminal event.
	CutStream bool
	// CreateAINotes is attached to created assignments that ask for AI.
	// Empty means the summary never materializes.
	CreateAINotes string

	failures map[string]Failure
	calls    map[string]int
}

// New returns an empty backend.
func New() *Server {
	return &Server{
		settings: models.Settings{AutoSyncReminders: "0", AISummaryEnabled: "1"},
		failures: make(map[string]Failure),
		calls:    make(map[string]int),
	}
}

// SetSettings replaces the stored settings.
func (s *Server) SetSettings(st models.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = st
}

// GetSettings returns the stored settings.
func (s *Server) GetSettings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// AddCourse stores a course. A non-zero id marks it as synced.
func (s *Server) AddCourse(name, reminderList string, enabled bool, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Course{Name: name, ReminderList: reminderList, Enabled: models.Flag(enabled)}
	if id != 0 {
		c.ID = &id
	}
	s.courses = append(s.courses, c)
}

// Course returns the stored course named name.
func (s *Server) Course(name string) (models.Course, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.course(name); c != nil {
		return *c, true
	}
	return models.Course{}, false
}

// AddAssignment stores an assignment.
func (s *Server) AddAssignment(a models.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.Status == "" {
		a.Status = models.StatusNotStarted
	}
	if a.Priority == "" {
		a.Priority = models.PriorityMedium
	}
	cp := a
	s.assignments = append(s.assignments, &cp)
}

// Assignment returns the stored assignment with id.
func (s *Server) Assignment(id string) (models.Assignment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.assignment(id); a != nil {
		return *a, true
	}
	return models.Assignment{}, false
}

// SetInsights sets what /api/ai-insights returns.
func (s *Server) SetInsights(in *models.Insights) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insights = in
}

// Fail makes route answer with status and {"error": msg}. Status 200
// exercises the error-in-success-body shape.
func (s *Server) Fail(route string, status int, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = Failure{Status: status, Message: msg}
}

// Calls returns how many requests reached route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Handler returns the chi router serving the backend API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.track)

	r.Route("/api", func(api chi.Router) {
		api.Route("/assignments", func(r chi.Router) {
			r.Get("/", s.listAssignments)
			r.Get("/deleted", s.listDeleted)
			r.Post("/create", s.createAssignment)
			r.Post("/update", s.updateAssignment)
			r.Post("/bulk-update", s.bulkUpdate)
			r.Post("/delete", s.withAssignment(func(a *models.Assignment) {
				a.Deleted = true
				a.DeletedAt = time.Now().UTC().Format(time.RFC3339)
			}))
			r.Post("/restore", s.withAssignment(func(a *models.Assignment) {
				a.Deleted = false
				a.DeletedAt = ""
			}))
			r.Post("/permanently-delete", s.purgeAssignment)
			r.Post("/generate-ai-summary", s.withAssignment(func(a *models.Assignment) {
				a.AINotes = "Summary: " + a.Title
			}))
			r.Post("/add-reminder", s.withAssignment(func(a *models.Assignment) {
				a.ReminderAdded = true
			}))
			r.Post("/remove-reminder", s.withAssignment(func(a *models.Assignment) {
				a.ReminderAdded = false
			}))
		})
		api.Get("/courses", s.listCourses)
		api.Route("/course-mapping", func(r chi.Router) {
			r.Get("/", s.getMapping)
			r.Post("/", s.setMapping)
			r.Post("/enable", s.withCourse(func(c *models.Course) { c.Enabled = true }))
			r.Post("/disable", s.withCourse(func(c *models.Course) { c.Enabled = false }))
			r.Post("/delete", s.deleteCourse)
		})
		api.Get("/settings", s.getSettings)
		api.Post("/settings", s.saveSettings)
		api.Get("/sync", s.sync)
		api.Get("/ai-insights", s.getInsights)
		api.Get("/ai-insights/check", s.checkInsights)
	})
	return r
}

func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		f, failing := s.failures[r.URL.Path]
		s.mu.Unlock()
		if failing {
			writeJSON(w, f.Status, map[string]string{"error": f.Message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func ok(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) assignment(id string) *models.Assignment {
	for _, a := range s.assignments {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *Server) course(name string) *models.Course {
	for i := range s.courses {
		if s.courses[i].Name == name {
			return &s.courses[i]
		}
	}
	return nil
}

func (s *Server) listAssignments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]models.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		if !a.Deleted {
			out = append(out, *a)
		}
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueAt < out[j].DueAt })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listDeleted(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]models.Assignment, 0)
	for _, a := range s.assignments {
		if a.Deleted {
			out = append(out, models.Assignment{
				ID:         a.ID,
				Title:      a.Title,
				CourseName: a.CourseName,
				DeletedAt:  a.DeletedAt,
			})
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createAssignment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID           string `json:"assignment_id"`
		Title        string `json:"title"`
		Description  string `json:"description"`
		DueAt        string `json:"due_at"`
		CourseName   string `json:"course_name"`
		ReminderList string `json:"reminder_list"`
		UseAI        bool   `json:"use_ai"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if body.Title == "" || body.DueAt == "" {
		writeError(w, http.StatusBadRequest, "Title and due date are required")
		return
	}
	if body.ID == "" {
		body.ID = "manual_" + uuid.NewString()
	}

	a := &models.Assignment{
		ID:           body.ID,
		Title:        body.Title,
		Description:  body.Description,
		DueAt:        body.DueAt,
		CourseName:   body.CourseName,
		ReminderList: body.ReminderList,
		Status:       models.StatusNotStarted,
		Priority:     models.PriorityMedium,
	}

	s.mu.Lock()
	if body.UseAI && body.Description != "" {
		a.AINotes = s.CreateAINotes
	}
	s.assignments = append(s.assignments, a)
	s.mu.Unlock()
	ok(w)
}

var updatable = map[string]bool{
	"status": true, "priority": true, "user_notes": true, "time_estimate": true,
	"suggested_priority": true, "ai_confidence": true, "ai_confidence_explanation": true,
	"reminder_added": true, "ai_notes": true,
}

var bulkUpdatable = map[string]bool{
	"status": true, "priority": true, "reminder_added": true, "reminder_list": true,
}

func applyFields(a *models.Assignment, fields map[string]any) {
	str := func(v any) string {
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
	for k, v := range fields {
		switch k {
		case "status":
			a.Status = models.Status(str(v))
		case "priority":
			a.Priority = models.Priority(str(v))
		case "user_notes":
			a.UserNotes = str(v)
		case "ai_notes":
			a.AINotes = str(v)
		case "suggested_priority":
			a.SuggestedPriority = str(v)
		case "ai_confidence_explanation":
			a.AIConfidenceExplanation = str(v)
		case "reminder_list":
			a.ReminderList = str(v)
		case "reminder_added":
			b, _ := v.(bool)
			if f, isNum := v.(float64); isNum {
				b = f != 0
			}
			a.ReminderAdded = models.Flag(b)
		case "time_estimate":
			if f, isNum := v.(float64); isNum {
				a.TimeEstimate = &f
			} else {
				a.TimeEstimate = nil
			}
		case "ai_confidence":
			if f, isNum := v.(float64); isNum {
				n := int(f)
				a.AIConfidence = &n
			} else {
				a.AIConfidence = nil
			}
		}
	}
}

func (s *Server) updateAssignment(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	id, _ := body["assignment_id"].(string)
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing assignment_id")
		return
	}
	fields := make(map[string]any)
	for k, v := range body {
		if updatable[k] {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "No valid fields to update")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.assignment(id)
	if a == nil {
		writeError(w, http.StatusNotFound, "Assignment not found")
		return
	}
	applyFields(a, fields)
	ok(w)
}

func (s *Server) bulkUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs    []string       `json:"assignment_ids"`
		Fields map[string]any `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(body.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "No assignment IDs provided")
		return
	}
	fields := make(map[string]any)
	for k, v := range body.Fields {
		if bulkUpdatable[k] {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "No valid fields to update")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	for _, id := range body.IDs {
		if a := s.assignment(id); a != nil {
			applyFields(a, fields)
			updated++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "updated": updated})
}

func decodeID(r *http.Request) string {
	var body struct {
		ID string `json:"assignment_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	return body.ID
}

func (s *Server) withAssignment(fn func(*models.Assignment)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := decodeID(r)
		if id == "" {
			writeError(w, http.StatusBadRequest, "Missing assignment_id")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		a := s.assignment(id)
		if a == nil {
			writeError(w, http.StatusNotFound, "Assignment not found")
			return
		}
		fn(a)
		ok(w)
	}
}

func (s *Server) purgeAssignment(w http.ResponseWriter, r *http.Request) {
	id := decodeID(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing assignment_id")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.assignments {
		if a.ID == id {
			s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)
			break
		}
	}
	ok(w)
}

func (s *Server) listCourses(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]models.Course(nil), s.courses...)
	s.mu.Unlock()
	if out == nil {
		out = []models.Course{}
	}
	writeJSON(w, http.StatusOK, out)
}

type courseBody struct {
	CourseName   string `json:"course_name"`
	ReminderList string `json:"reminder_list"`
}

func (s *Server) getMapping(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("course_name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "Missing course_name")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var list *string
	if c := s.course(name); c != nil && c.ReminderList != "" {
		v := c.ReminderList
		list = &v
	}
	writeJSON(w, http.StatusOK, map[string]*string{"reminder_list": list})
}

func (s *Server) setMapping(w http.ResponseWriter, r *http.Request) {
	var body courseBody
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.CourseName == "" || body.ReminderList == "" {
		writeError(w, http.StatusBadRequest, "Missing course_name or reminder_list")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.course(body.CourseName); c != nil {
		c.ReminderList = body.ReminderList
	} else {
		s.courses = append(s.courses, models.Course{Name: body.CourseName, ReminderList: body.ReminderList, Enabled: true})
	}
	ok(w)
}

func (s *Server) withCourse(fn func(*models.Course)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body courseBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.CourseName == "" {
			writeError(w, http.StatusBadRequest, "Missing course_name")
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		c := s.course(body.CourseName)
		if c == nil {
			s.courses = append(s.courses, models.Course{Name: body.CourseName})
			c = &s.courses[len(s.courses)-1]
		}
		fn(c)
		ok(w)
	}
}

func (s *Server) deleteCourse(w http.ResponseWriter, r *http.Request) {
	var body courseBody
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.CourseName == "" {
		writeError(w, http.StatusBadRequest, "Missing course_name")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.courses {
		if s.courses[i].Name == body.CourseName {
			s.courses = append(s.courses[:i], s.courses[i+1:]...)
			break
		}
	}
	kept := s.assignments[:0]
	for _, a := range s.assignments {
		if a.CourseName != body.CourseName {
			kept = append(kept, a)
		}
	}
	s.assignments = kept
	ok(w)
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	st := s.settings
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) saveSettings(w http.ResponseWriter, r *http.Request) {
	var body models.Settings
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	s.mu.Lock()
	if body.CollegeName != "" {
		s.settings.CollegeName = body.CollegeName
	}
	s.settings.AutoSyncReminders = body.AutoSyncReminders
	s.settings.AISummaryEnabled = body.AISummaryEnabled
	s.mu.Unlock()
	ok(w)
}

func (s *Server) sync(w http.ResponseWriter, r *http.Request) {
	flusher, canFlush := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	s.mu.Lock()
	events := append([]models.SyncEvent(nil), s.SyncEvents...)
	cut := s.CutStream
	s.mu.Unlock()

	if len(events) == 0 && !cut {
		events = []models.SyncEvent{{Type: models.SyncComplete, Progress: 100, TotalAdded: 0}}
	}

	for _, ev := range events {
		if ev.Type == models.SyncProgress && ev.Assignment != nil {
			s.AddAssignment(*ev.Assignment)
		}
		data, _ := json.Marshal(ev)
		fmt.Fprintf(w, "data: %s\n\n", data)
		if canFlush {
			flusher.Flush()
		}
	}
}

func (s *Server) getInsights(w http.ResponseWriter, r *http.Request) {
	end := r.URL.Query().Get("end_date")
	s.mu.Lock()
	in := s.insights
	if in != nil {
		s.insightsEnd = end
	}
	s.mu.Unlock()
	if in == nil {
		writeError(w, http.StatusInternalServerError, "AI not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"insights":     in,
		"cached":       r.URL.Query().Get("refresh") != "true",
		"generated_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) checkInsights(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, models.InsightsStatus{Exists: s.insightsEnd != "", EndDate: s.insightsEnd})
}
