// Package web serves the browser front-end. It is meant for loopback use
// only and has no authentication.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/noahxzhu/remindme/internal/alarm"
	"github.com/noahxzhu/remindme/internal/app"
	"github.com/noahxzhu/remindme/internal/model"
	"github.com/noahxzhu/remindme/internal/storage"
	"github.com/noahxzhu/remindme/internal/timeutil"
	"github.com/noahxzhu/remindme/internal/view"
)

//go:embed templates/*
var templateFS embed.FS

type Server struct {
	ctrl   *app.Controller
	router *http.ServeMux
	logger *slog.Logger
}

func NewServer(ctrl *app.Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		ctrl:   ctrl,
		router: http.NewServeMux(),
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.HandleFunc("POST /add", s.handleAdd)
	s.router.HandleFunc("POST /update", s.handleUpdate)
	s.router.HandleFunc("POST /complete", s.handleComplete)
	s.router.HandleFunc("POST /delete", s.handleDelete)
	s.router.HandleFunc("POST /dismiss", s.handleDismiss)
	s.router.HandleFunc("POST /notifications", s.handleNotifications)

	s.router.HandleFunc("GET /api/reminders", s.handleAPIReminders)
	s.router.HandleFunc("GET /api/alarms", s.handleAPIAlarms)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.loopbackOnly(s.router).ServeHTTP(w, r)
}

// Middleware
func (s *Server) loopbackOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			s.logger.Warn("Rejected non-loopback request", "remote", r.RemoteAddr, "path", r.URL.Path)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handlers

type reminderRow struct {
	model.Reminder
	When      string
	Remaining string
	Status    view.Status
	Local     string
}

type alarmRow struct {
	alarm.View
	When string
}

type indexData struct {
	Filter     view.Filter
	Reminders  []reminderRow
	Alarms     []alarmRow
	Stats      view.Stats
	Permission alarm.Permission
	Advisory   string
	Error      string
	DefaultAt  string
	Categories []model.Category
	Priorities []model.Priority
	Ringtones  []model.Ringtone
	Statuses   []view.Status
}

func parseFilter(r *http.Request) (view.Filter, error) {
	q := r.URL.Query()
	f := view.Filter{Search: q.Get("q")}

	if c := q.Get("category"); c != "" {
		cat, err := model.ParseCategory(c)
		if err != nil {
			return f, err
		}
		f.Category = cat
	}
	if p := q.Get("priority"); p != "" {
		pr, err := model.ParsePriority(p)
		if err != nil {
			return f, err
		}
		f.Priority = pr
	}
	st, err := view.ParseStatus(q.Get("status"))
	if err != nil {
		return f, err
	}
	f.Status = st
	return f, nil
}

func statusOf(r model.Reminder, now time.Time) view.Status {
	switch {
	case r.Completed:
		return view.StatusCompleted
	case timeutil.IsLapsed(r.ScheduledAt, now):
		return view.StatusOverdue
	default:
		return view.StatusActive
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	data := s.indexData(f)
	if err != nil {
		data.Error = err.Error()
	}
	if msg := r.URL.Query().Get("error"); msg != "" {
		data.Error = msg
	}
	s.renderTemplate(w, "index.html", data)
}

func (s *Server) indexData(f view.Filter) indexData {
	now := s.ctrl.Now()

	reminders := s.ctrl.View(f)
	rows := make([]reminderRow, 0, len(reminders))
	for _, rem := range reminders {
		rows = append(rows, reminderRow{
			Reminder:  rem,
			When:      timeutil.FormatForDisplay(rem.ScheduledAt),
			Remaining: timeutil.RemainingLabel(rem.ScheduledAt, now),
			Status:    statusOf(rem, now),
			Local:     rem.ScheduledAt.Local().Format(timeutil.LocalLayout),
		})
	}

	var alarms []alarmRow
	for _, v := range s.ctrl.ActiveAlarms() {
		alarms = append(alarms, alarmRow{View: v, When: timeutil.FormatForDisplay(v.ScheduledAt)})
	}

	return indexData{
		Filter:     f,
		Reminders:  rows,
		Alarms:     alarms,
		Stats:      s.ctrl.Stats(),
		Permission: s.ctrl.Permission(),
		Advisory:   s.ctrl.Advisory(),
		DefaultAt:  now.Add(time.Hour).Local().Format(timeutil.LocalLayout),
		Categories: model.Categories,
		Priorities: model.Priorities,
		Ringtones:  model.Ringtones,
		Statuses:   view.Statuses[1:],
	}
}

func parseInput(r *http.Request) (model.Input, error) {
	at, err := timeutil.ParseLocal(r.FormValue("datetime"), "")
	if err != nil {
		return model.Input{}, fmt.Errorf("%w: %w", model.ErrInvalidReminder, err)
	}
	return model.Input{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		ScheduledAt: at,
		Category:    model.Category(r.FormValue("category")),
		Priority:    model.Priority(r.FormValue("priority")),
		Ringtone:    model.Ringtone(r.FormValue("ringtone")),
	}, nil
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	in, err := parseInput(r)
	if err == nil {
		_, err = s.ctrl.AddReminder(r.Context(), in)
	}
	s.redirect(w, r, err)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	in, err := parseInput(r)
	if err == nil {
		_, err = s.ctrl.UpdateReminder(r.Context(), r.FormValue("id"), in)
	}
	s.redirect(w, r, err)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	_, err := s.ctrl.CompleteReminder(r.Context(), r.FormValue("id"))
	s.redirect(w, r, err)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := s.ctrl.DeleteReminder(r.Context(), r.FormValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		err = nil
	}
	s.redirect(w, r, err)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	reason := alarm.DismissButton
	if r.FormValue("reason") == string(alarm.DismissEscape) {
		reason = alarm.DismissEscape
	}
	s.ctrl.DismissAlarmFor(r.FormValue("id"), reason)
	s.redirect(w, r, nil)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	_, err := s.ctrl.EnableNotifications(r.Context())
	s.redirect(w, r, err)
}

// redirect returns to the list, carrying a validation error in the query.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, err error) {
	target := "/"
	if ref := r.FormValue("return"); len(ref) > 1 && ref[0] == '/' && ref[1] == '?' {
		target = ref
	}
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidReminder):
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		default:
			s.logger.Error("Request failed", "path", r.URL.Path, "error", err)
			http.Error(w, "Failed to save: "+err.Error(), http.StatusInternalServerError)
			return
		}
		target = "/?error=" + url.QueryEscape(err.Error())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

type apiReminder struct {
	model.Reminder
	Remaining string      `json:"remaining"`
	Status    view.Status `json:"status"`
}

func (s *Server) handleAPIReminders(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	now := s.ctrl.Now()
	out := []apiReminder{}
	for _, rem := range s.ctrl.View(f) {
		out = append(out, apiReminder{
			Reminder:  rem,
			Remaining: timeutil.RemainingLabel(rem.ScheduledAt, now),
			Status:    statusOf(rem, now),
		})
	}
	s.writeJSON(w, out)
}

type apiAlarm struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Ringtone    string    `json:"ringtone"`
	RaisedAt    time.Time `json:"raised_at"`
}

func (s *Server) handleAPIAlarms(w http.ResponseWriter, r *http.Request) {
	out := []apiAlarm{}
	for _, v := range s.ctrl.ActiveAlarms() {
		out = append(out, apiAlarm{
			ID:          v.ReminderID,
			Title:       v.Title,
			Description: v.Description,
			ScheduledAt: v.ScheduledAt,
			Ringtone:    v.RingtoneLabel,
			RaisedAt:    v.RaisedAt,
		})
	}
	s.writeJSON(w, out)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) renderTemplate(w http.ResponseWriter, tmplName string, data interface{}) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+tmplName)
	if err != nil {
		http.Error(w, fmt.Sprintf("Template error: %v", err), 500)
		return
	}
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, fmt.Sprintf("Execute error: %v", err), 500)
	}
}
