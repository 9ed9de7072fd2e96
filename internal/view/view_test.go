package view

import (
	"testing"
	"time"

	"github.com/noahxzhu/remindme/internal/model"
)

var now = time.Date(2025, 8, 1, 9, 0, 0, 0, time.Local)

func ids(rs []model.Reminder) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func equalIDs(got []model.Reminder, want ...string) bool {
	g := ids(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

func fixture() []model.Reminder {
	return []model.Reminder{
		{
			ID: "milk", Title: "Buy milk", Category: model.CategoryPersonal,
			Priority: model.PriorityLow, ScheduledAt: now.Add(2 * time.Hour),
		},
		{
			ID: "report", Title: "Report", Category: model.CategoryWork,
			Priority: model.PriorityHigh, ScheduledAt: now.Add(-time.Hour),
		},
	}
}

func TestStatusFilter(t *testing.T) {
	rs := fixture()

	if got := Apply(rs, Filter{Status: StatusOverdue}, now); !equalIDs(got, "report") {
		t.Errorf("overdue = %v, want [report]", ids(got))
	}
	if got := Apply(rs, Filter{Status: StatusActive}, now); !equalIDs(got, "report", "milk") {
		t.Errorf("active = %v, want [report milk]", ids(got))
	}
	if got := Apply(rs, Filter{Status: StatusCompleted}, now); len(got) != 0 {
		t.Errorf("completed = %v, want none", ids(got))
	}

	rs[1].Completed = true
	if got := Apply(rs, Filter{Status: StatusOverdue}, now); len(got) != 0 {
		t.Errorf("completed reminders are never overdue, got %v", ids(got))
	}
	if got := Apply(rs, Filter{Status: StatusCompleted}, now); !equalIDs(got, "report") {
		t.Errorf("completed = %v, want [report]", ids(got))
	}
}

func TestSearchCategoryPriority(t *testing.T) {
	rs := fixture()
	rs[0].Description = "Semi-skimmed, from the corner SHOP"

	tests := []struct {
		name string
		f    Filter
		want []string
	}{
		{"title case-insensitive", Filter{Search: "MILK"}, []string{"milk"}},
		{"description", Filter{Search: "shop"}, []string{"milk"}},
		{"no match", Filter{Search: "dentist"}, nil},
		{"category", Filter{Category: model.CategoryWork}, []string{"report"}},
		{"priority", Filter{Priority: model.PriorityLow}, []string{"milk"}},
		{"combined miss", Filter{Category: model.CategoryWork, Priority: model.PriorityLow}, nil},
		{"everything", Filter{}, []string{"report", "milk"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Apply(rs, tt.f, now); !equalIDs(got, tt.want...) {
				t.Errorf("got %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestSortOrder(t *testing.T) {
	rs := []model.Reminder{
		{ID: "low", Priority: model.PriorityLow, ScheduledAt: now.Add(time.Hour)},
		{ID: "high", Priority: model.PriorityHigh, ScheduledAt: now.Add(3 * time.Hour)},
		{ID: "medium", Priority: model.PriorityMedium, ScheduledAt: now.Add(2 * time.Hour)},
	}
	if got := Apply(rs, Filter{}, now); !equalIDs(got, "high", "medium", "low") {
		t.Fatalf("order = %v", ids(got))
	}

	tie := []model.Reminder{
		{ID: "later", Priority: model.PriorityHigh, ScheduledAt: now.Add(2 * time.Hour)},
		{ID: "sooner", Priority: model.PriorityHigh, ScheduledAt: now.Add(time.Hour)},
		{ID: "same-a", Priority: model.PriorityLow, ScheduledAt: now},
		{ID: "same-b", Priority: model.PriorityLow, ScheduledAt: now},
	}
	if got := Apply(tie, Filter{}, now); !equalIDs(got, "sooner", "later", "same-a", "same-b") {
		t.Fatalf("tie order = %v", ids(got))
	}
	if tie[0].ID != "later" {
		t.Fatal("Apply reordered its input")
	}
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"":          StatusAll,
		"all":       StatusAll,
		"Active":    StatusActive,
		"completed": StatusCompleted,
		"overdue":   StatusOverdue,
		"lapsed":    StatusOverdue,
	} {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Errorf("ParseStatus(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseStatus("snoozed"); err == nil {
		t.Error("expected an error for an unknown status")
	}
}

func TestSummarize(t *testing.T) {
	rs := fixture()
	rs = append(rs, model.Reminder{ID: "done", Completed: true, ScheduledAt: now.Add(-time.Hour)})

	st := Summarize(rs, now)
	if st.Total != 3 || st.Active != 2 || st.Completed != 1 || st.Overdue != 1 {
		t.Fatalf("stats = %+v", st)
	}
}
