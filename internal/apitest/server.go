// Package apitest provides an in-memory fake of the task management REST API
// for tests across packages.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"tms-cli/internal/model"
)

// Request is a recorded call against the fake server.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Auth     string
	Body     []byte
}

type failure struct {
	status  int
	message string
}

type Server struct {
	*httptest.Server

	// IssuedToken is returned from /auth/login and /auth/register.
	IssuedToken string
	// RequireAuth rejects non-auth requests without the issued bearer token.
	RequireAuth bool

	mu          sync.Mutex
	nextID      int64
	users       map[int64]model.User
	passwords   map[string]string
	tasks       map[int64]model.Task
	assignments map[int64][]int64
	requests    []Request
	failNext    map[string]failure
}

func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		IssuedToken: "test-token",
		nextID:      1,
		users:       map[int64]model.User{},
		passwords:   map[string]string{},
		tasks:       map[int64]model.Task{},
		assignments: map[int64][]int64{},
		failNext:    map[string]failure{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("POST /auth/register", s.register)
	mux.HandleFunc("GET /members", s.authed(s.listMembers))
	mux.HandleFunc("POST /members", s.authed(s.createMember))
	mux.HandleFunc("GET /members/{id}", s.authed(s.getMember))
	mux.HandleFunc("PATCH /members/{id}", s.authed(s.updateMember))
	mux.HandleFunc("DELETE /members/{id}", s.authed(s.deleteMember))
	mux.HandleFunc("GET /tasks", s.authed(s.listTasks))
	mux.HandleFunc("POST /tasks", s.authed(s.createTask))
	mux.HandleFunc("GET /tasks/{id}", s.authed(s.getTask))
	mux.HandleFunc("PATCH /tasks/{id}", s.authed(s.updateTask))
	mux.HandleFunc("POST /tasks/{id}/assign", s.authed(s.assign))
	mux.HandleFunc("DELETE /tasks/{id}/unassign/{memberId}", s.authed(s.unassign))
	mux.HandleFunc("GET /tasks/{id}/assignments", s.authed(s.listAssignments))

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Auth:     r.Header.Get("Authorization"),
			Body:     body,
		})
		key := r.Method + " " + r.URL.Path
		f, fail := s.failNext[key]
		if fail {
			delete(s.failNext, key)
		}
		s.mu.Unlock()

		if fail {
			if f.message == "" {
				w.WriteHeader(f.status)
				return
			}
			writeJSON(w, f.status, map[string]string{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.RequireAuth && r.Header.Get("Authorization") != "Bearer "+s.IssuedToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		h(w, r)
	}
}

// FailNext makes the next METHOD+path call return status (with an optional server message).
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[method+" "+path] = failure{status: status, message: message}
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many recorded requests match method and path exactly.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) nextIDLocked() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// AddUser seeds an account that can log in.
func (s *Server) AddUser(name, email, password string, role model.Role) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	u := model.User{ID: s.nextIDLocked(), Name: name, Email: email, Role: role, CreatedAt: now, UpdatedAt: now}
	s.users[u.ID] = u
	s.passwords[strings.ToLower(email)] = password
	return u
}

func (s *Server) AddTask(t model.Task) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = s.nextIDLocked()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		t.UpdatedAt = t.CreatedAt
	}
	s.tasks[t.ID] = t
	return t
}

func (s *Server) Assign(taskID, memberID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[taskID] = append(s.assignments[taskID], memberID)
}

func (s *Server) Member(id int64) (model.Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *Server) Task(id int64) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	return t, ok
}

func (s *Server) Assignments(taskID int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.assignments[taskID]...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil
}

func paginate(r *http.Request, total int) (page, perPage, from, to int, meta model.Pagination) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	totalPages := (total + perPage - 1) / perPage
	from = (page - 1) * perPage
	if from > total {
		from = total
	}
	to = from + perPage
	if to > total {
		to = total
	}
	meta = model.Pagination{CurrentPage: page, TotalPages: totalPages, TotalCount: total, PerPage: perPage}
	return
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pw, ok := s.passwords[strings.ToLower(req.Email)]
	if !ok || pw != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
		return
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, req.Email) {
			writeJSON(w, http.StatusOK, model.AuthResponse{Token: s.IssuedToken, User: u, Message: "Login successful"})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	if _, exists := s.passwords[strings.ToLower(req.Email)]; exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
		return
	}
	s.mu.Unlock()
	u := s.AddUser(req.Name, req.Email, req.Password, req.RoleName)
	writeJSON(w, http.StatusCreated, model.AuthResponse{Token: s.IssuedToken, User: u})
}

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
	s.mu.Lock()
	var all []model.Member
	for _, u := range s.users {
		if search != "" && !strings.Contains(strings.ToLower(u.Name+" "+u.Email), search) {
			continue
		}
		all = append(all, u)
	}
	s.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	_, _, from, to, meta := paginate(r, len(all))
	out := append([]model.Member{}, all[from:to]...)
	writeJSON(w, http.StatusOK, model.MemberList{Members: out, Pagination: meta})
}

func (s *Server) getMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid id"})
		return
	}
	u, found := s.Member(id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Member not found"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) createMember(w http.ResponseWriter, r *http.Request) {
	var req model.CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	u := s.AddUser(req.Name, req.Email, req.Password, req.RoleName)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) updateMember(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")
	var req model.UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Member not found"})
		return
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.RoleName != nil {
		u.Role = *req.RoleName
	}
	s.users[id] = u
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) deleteMember(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Member not found"})
		return
	}
	delete(s.users, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(strings.TrimSpace(q.Get("search")))
	status := q.Get("status")
	priority := q.Get("priority")

	s.mu.Lock()
	var all []model.Task
	for _, t := range s.tasks {
		if search != "" && !strings.Contains(strings.ToLower(t.Title+" "+t.Description), search) {
			continue
		}
		if status != "" && string(t.Status) != status {
			continue
		}
		if priority != "" && string(t.Priority) != priority {
			continue
		}
		all = append(all, t)
	}
	s.mu.Unlock()
	switch q.Get("sort") {
	case model.SortDueDate:
		sort.Slice(all, func(i, j int) bool { return all[i].DueDate < all[j].DueDate })
	default:
		sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	}

	_, _, from, to, meta := paginate(r, len(all))
	out := append([]model.Task{}, all[from:to]...)
	writeJSON(w, http.StatusOK, model.TaskList{Tasks: out, Pagination: meta})
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")
	t, ok := s.Task(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	t := s.AddTask(model.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")
	var req model.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.DueDate != nil {
		t.DueDate = *req.DueDate
	}
	s.tasks[id] = t
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) assign(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")
	var req model.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	for _, m := range s.assignments[id] {
		if m == req.MemberID {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "Member already assigned"})
			return
		}
	}
	s.assignments[id] = append(s.assignments[id], req.MemberID)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Member assigned"})
}

func (s *Server) unassign(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")
	memberID, _ := pathID(r, "memberId")
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.assignments[id]
	out := cur[:0]
	removed := false
	for _, m := range cur {
		if m == memberID {
			removed = true
			continue
		}
		out = append(out, m)
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": fmt.Sprintf("Member %d is not assigned", memberID)})
		return
	}
	s.assignments[id] = out
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listAssignments(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return
	}
	out := []model.Member{}
	for _, m := range s.assignments[id] {
		if u, ok := s.users[m]; ok {
			out = append(out, u)
		}
	}
	writeJSON(w, http.StatusOK, out)
}
