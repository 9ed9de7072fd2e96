// Package mcptools exposes the reminder operations as MCP tools over stdio.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/noahxzhu/remindme/internal/alarm"
	"github.com/noahxzhu/remindme/internal/app"
	"github.com/noahxzhu/remindme/internal/model"
	"github.com/noahxzhu/remindme/internal/timeutil"
	"github.com/noahxzhu/remindme/internal/view"
)

const (
	serverName    = "remindme"
	serverVersion = "1.0.0"
)

type Server struct {
	mcpServer *server.MCPServer
	ctrl      *app.Controller
}

func NewServer(ctrl *app.Controller) *Server {
	s := &Server{ctrl: ctrl}
	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)
	s.registerTools()
	return s
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio blocks until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	timeHelp := "Time as RFC3339 (2025-01-15T09:00:00Z) or local 2025-01-15T09:00"

	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Add a reminder; its alarm rings at the scheduled time"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Reminder title")),
			mcp.WithString("scheduled_at", mcp.Required(), mcp.Description(timeHelp)),
			mcp.WithString("description", mcp.Description("Optional description")),
			mcp.WithString("category", mcp.Description("personal, work, health, education, other (default: personal)")),
			mcp.WithString("priority", mcp.Description("low, medium, high (default: low)")),
			mcp.WithString("ringtone", mcp.Description("classic, digital, chime, urgent, gentle (default: classic)")),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List reminders, highest priority first, then soonest"),
			mcp.WithString("search", mcp.Description("Case-insensitive text in title or description")),
			mcp.WithString("category", mcp.Description("Category filter")),
			mcp.WithString("priority", mcp.Description("Priority filter")),
			mcp.WithString("status", mcp.Description("active, completed, overdue, or empty for all")),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("complete_reminder",
			mcp.WithDescription("Toggle a reminder's completion; completing cancels its alarm"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleCompleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder and cancel its alarm"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDeleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update_reminder",
			mcp.WithDescription("Update a reminder's fields; omitted fields keep their value"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithString("scheduled_at", mcp.Description(timeHelp)),
			mcp.WithString("category", mcp.Description("New category")),
			mcp.WithString("priority", mcp.Description("New priority")),
			mcp.WithString("ringtone", mcp.Description("New ringtone")),
		),
		s.handleUpdateReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("enable_notifications",
			mcp.WithDescription("Request permission for system notifications"),
		),
		s.handleEnableNotifications,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_alarms",
			mcp.WithDescription("List alarms that are ringing now"),
		),
		s.handleListAlarms,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("dismiss_alarm",
			mcp.WithDescription("Silence the ringing alarm of a reminder"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDismissAlarm,
	)
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return timeutil.ParseLocal(s, "")
}

func toJSON(v any) *mcp.CallToolResult {
	output, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(output))
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	at := req.GetString("scheduled_at", "")
	if at == "" {
		return mcp.NewToolResultError("scheduled_at is required"), nil
	}
	scheduledAt, err := parseTime(at)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid scheduled_at: %v", err)), nil
	}

	added, err := s.ctrl.AddReminder(ctx, model.Input{
		Title:       req.GetString("title", ""),
		Description: req.GetString("description", ""),
		ScheduledAt: scheduledAt,
		Category:    model.Category(req.GetString("category", "")),
		Priority:    model.Priority(req.GetString("priority", "")),
		Ringtone:    model.Ringtone(req.GetString("ringtone", "")),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", err)), nil
	}
	return toJSON(added), nil
}

func (s *Server) handleListReminders(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := view.Filter{Search: req.GetString("search", "")}
	if c := req.GetString("category", ""); c != "" {
		cat, err := model.ParseCategory(c)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.Category = cat
	}
	if p := req.GetString("priority", ""); p != "" {
		pr, err := model.ParsePriority(p)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.Priority = pr
	}
	st, err := view.ParseStatus(req.GetString("status", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f.Status = st

	reminders := s.ctrl.View(f)
	if len(reminders) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}
	return toJSON(reminders), nil
}

func (s *Server) handleCompleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	r, err := s.ctrl.CompleteReminder(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to complete reminder: %v", err)), nil
	}
	if r.Completed {
		return mcp.NewToolResultText(fmt.Sprintf("Reminder %s marked as completed.", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s reopened.", id)), nil
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if err := s.ctrl.DeleteReminder(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s deleted.", id)), nil
}

func (s *Server) handleUpdateReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	current, ok := s.ctrl.Get(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("reminder %s not found", id)), nil
	}

	in := model.Input{
		Title:       req.GetString("title", current.Title),
		Description: req.GetString("description", current.Description),
		ScheduledAt: current.ScheduledAt,
		Category:    model.Category(req.GetString("category", string(current.Category))),
		Priority:    model.Priority(req.GetString("priority", string(current.Priority))),
		Ringtone:    model.Ringtone(req.GetString("ringtone", string(current.Ringtone))),
	}
	if at := req.GetString("scheduled_at", ""); at != "" {
		t, err := parseTime(at)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid scheduled_at: %v", err)), nil
		}
		in.ScheduledAt = t
	}

	updated, err := s.ctrl.UpdateReminder(ctx, id, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update reminder: %v", err)), nil
	}
	return toJSON(updated), nil
}

func (s *Server) handleEnableNotifications(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	perm, err := s.ctrl.EnableNotifications(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if perm != alarm.PermissionGranted {
		if adv := s.ctrl.Advisory(); adv != "" {
			return mcp.NewToolResultText(fmt.Sprintf("Notifications %s. %s", perm, adv)), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("Notifications %s.", perm)), nil
}

func (s *Server) handleListAlarms(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	alarms := s.ctrl.ActiveAlarms()
	if len(alarms) == 0 {
		return mcp.NewToolResultText("No alarms ringing."), nil
	}
	type ringing struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		ScheduledAt time.Time `json:"scheduled_at"`
		Ringtone    string    `json:"ringtone"`
	}
	out := make([]ringing, 0, len(alarms))
	for _, v := range alarms {
		out = append(out, ringing{ID: v.ReminderID, Title: v.Title, ScheduledAt: v.ScheduledAt, Ringtone: v.RingtoneLabel})
	}
	return toJSON(out), nil
}

func (s *Server) handleDismissAlarm(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if !s.ctrl.DismissAlarm(id) {
		return mcp.NewToolResultError(fmt.Sprintf("no alarm ringing for %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Alarm for %s dismissed.", id)), nil
}
