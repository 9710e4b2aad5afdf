package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"taskchat/internal/chat"
	"taskchat/internal/result"
	"taskchat/internal/store"
	"taskchat/internal/task"
	"taskchat/pkg/cache"
	"taskchat/pkg/mq"

	"github.com/google/uuid"
)

type Server struct {
	store  *store.Store
	parser *chat.Parser
	pub    mq.Publisher
	undo   cache.Slot[task.Task]
	mux    *http.ServeMux
}

func New(st *store.Store, pub mq.Publisher) *Server {
	if pub == nil {
		pub = mq.Noop{}
	}
	s := &Server{store: st, parser: chat.New(), pub: pub}
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/tasks", s.handleTasks)
	s.mux.HandleFunc("/tasks/", s.handleTaskSub)
	s.mux.HandleFunc("/chat", s.handleChat)
	s.mux.HandleFunc("/api/chat", s.handleChat)
	return s
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler { return s.withLogging(s.mux) }

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()
	return server.ListenAndServe()
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %s -> %d (%s)", id, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// --- routes ---

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeErr(w, http.StatusNotFound, "not_found", "Resource not found")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTasks(w, r)
	case http.MethodPost:
		s.createTask(w, r)
	default:
		writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (s *Server) handleTaskSub(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/tasks/")
	switch rest {
	case "reset":
		if r.Method != http.MethodDelete && r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		s.resetTasks(w, r)
	case "undo-delete":
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		s.undoDelete(w, r)
	case "export":
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		s.exportTasks(w, r)
	default:
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			writeErr(w, http.StatusNotFound, "not_found", "Resource not found")
			return
		}
		switch r.Method {
		case http.MethodPatch:
			s.updateTask(w, r, id)
		case http.MethodDelete:
			s.deleteTask(w, r, id)
		default:
			writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		}
	}
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	data := decodeBody(r)
	desc, _ := data["description"].(string)
	if strings.TrimSpace(desc) == "" {
		writeErr(w, http.StatusBadRequest, "bad_request", "description is required")
		return
	}
	reminder, err := reminderFromBody(data, "reminder")
	if err != nil {
		s.fail(w, err)
		return
	}
	t, err := s.store.Create(r.Context(), desc, reminder)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.publish("task.created", &t)
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "task": t})
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tasks": tasks})
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request, id int64) {
	data := decodeBody(r)
	var u task.Update
	if v, ok := data["completed"]; ok {
		b := truthy(v)
		u.Completed = &b
	}
	if v, ok := data["description"]; ok {
		if str, ok := v.(string); ok {
			u.Description = &str
		}
	}
	if v, ok := data["reminder"]; ok {
		u.ReminderSet = true
		if v != nil {
			str, ok := v.(string)
			if !ok {
				writeErr(w, http.StatusBadRequest, "bad_request", "Invalid reminder format.")
				return
			}
			reminder, err := task.NormalizeReminder(str)
			if err != nil {
				s.fail(w, err)
				return
			}
			u.Reminder = reminder
		}
	}
	t, err := s.store.Update(r.Context(), id, u)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "task": t})
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request, id int64) {
	snap, err := s.store.Delete(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.undo.Put(snap)
	s.publish("task.deleted", &snap)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deletedTaskId": id})
}

func (s *Server) resetTasks(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reset(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	s.undo.Clear()
	s.publish("task.reset", nil)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "All tasks cleared"})
}

func (s *Server) undoDelete(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.undo.Take()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "message": "Nothing to undo"})
		return
	}
	restored, err := s.store.Insert(r.Context(), snap)
	if err != nil {
		// keep the snapshot so the undo can be retried
		s.undo.Put(snap)
		s.fail(w, err)
		return
	}
	s.publish("task.restored", &restored)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "task": restored})
}

func (s *Server) exportTasks(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	b, err := result.NewExporter(s.store).Export(r.Context(), format)
	if err != nil {
		s.fail(w, err)
		return
	}
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(b)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	data := decodeBody(r)
	message, _ := data["message"].(string)
	if message == "" {
		writeErr(w, http.StatusBadRequest, "bad_request", "message is required")
		return
	}
	action := s.parser.Parse(message)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": action})
}

// --- helpers ---

type taskEvent struct {
	Type string     `json:"type"`
	Task *task.Task `json:"task,omitempty"`
}

func (s *Server) publish(evtType string, t *task.Task) {
	payload, err := json.Marshal(taskEvent{Type: evtType, Task: t})
	if err != nil {
		return
	}
	if err := s.pub.Publish("tasks", payload); err != nil {
		log.Printf("publish %s: %v", evtType, err)
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	var ve *task.ValidationError
	switch {
	case errors.As(err, &ve):
		writeErr(w, http.StatusBadRequest, "bad_request", ve.Msg)
	case errors.Is(err, task.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not_found", "Resource not found")
	default:
		log.Printf("internal error: %v", err)
		writeErr(w, http.StatusInternalServerError, "server_error", "Something went wrong")
	}
}

// reminderFromBody normalizes an optional reminder field. Absent and JSON
// null both mean "no reminder".
func reminderFromBody(data map[string]any, key string) (*string, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return nil, nil
	}
	str, ok := v.(string)
	if !ok {
		return nil, task.Invalid("Invalid reminder format.")
	}
	return task.NormalizeReminder(str)
}

// decodeBody reads the request body as JSON, falling back to form encoding.
// Unreadable bodies yield an empty map so handlers report missing fields.
func decodeBody(r *http.Request) map[string]any {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		return map[string]any{}
	}
	var m map[string]any
	if json.Unmarshal(body, &m) == nil && m != nil {
		return m
	}
	vals, err := url.ParseQuery(string(body))
	if err != nil {
		return map[string]any{}
	}
	m = make(map[string]any, len(vals))
	for k, v := range vals {
		if len(v) > 0 {
			m[k] = v[0]
		}
	}
	return m
}

// truthy mirrors loose form/JSON booleans: JSON true, nonzero numbers and
// the strings "true"/"1"/"on" all count as true.
func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x == "true" || x == "1" || x == "on"
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, kind, message string) {
	writeJSON(w, code, map[string]any{"ok": false, "error": kind, "message": message})
}
