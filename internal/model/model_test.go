package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTaskNormalize_CompletedAtIffCompleted(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	earlier := NewTimestamp(now.Add(-time.Hour))
	weekly := RecurrenceWeekly

	tests := []struct {
		name          string
		in            Task
		wantCompleted bool
		wantPattern   bool
	}{
		{name: "pending drops stray completed_at", in: Task{Status: StatusPending, CompletedAt: &earlier}},
		{name: "completed without time gets one", in: Task{Status: StatusCompleted}, wantCompleted: true},
		{name: "completed keeps server time", in: Task{Status: StatusCompleted, CompletedAt: &earlier}, wantCompleted: true},
		{name: "pattern dropped when not recurring", in: Task{Status: StatusPending, RecurrencePattern: &weekly}},
		{name: "pattern kept when recurring", in: Task{Status: StatusPending, IsRecurring: true, RecurrencePattern: &weekly}, wantPattern: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			task := tt.in
			task.Normalize(now)
			if got := task.CompletedAt != nil; got != tt.wantCompleted {
				t.Fatalf("completed_at set = %v, want %v", got, tt.wantCompleted)
			}
			if (task.CompletedAt != nil) != (task.Status == StatusCompleted) {
				t.Fatalf("invariant broken: status=%s completed_at=%v", task.Status, task.CompletedAt)
			}
			if got := task.RecurrencePattern != nil; got != tt.wantPattern {
				t.Fatalf("recurrence_pattern set = %v, want %v", got, tt.wantPattern)
			}
		})
	}

	// Server-assigned completion time must survive normalization.
	task := Task{Status: StatusCompleted, CompletedAt: &earlier}
	task.Normalize(now)
	if !task.CompletedAt.Equal(earlier.Time) {
		t.Fatalf("completed_at rewritten: got %v want %v", task.CompletedAt.Time, earlier.Time)
	}
}

func TestTimestamp_UnmarshalBackendShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: `"2025-06-01T00:00:00"`, want: "2025-06-01"},
		{raw: `"2025-06-01T13:45:10.123456"`, want: "2025-06-01"},
		{raw: `"2025-06-01T23:00:00Z"`, want: "2025-06-01"},
		{raw: `"2025-06-01"`, want: "2025-06-01"},
		{raw: `null`, want: ""},
	}
	for _, tt := range tests {
		var ts Timestamp
		if err := json.Unmarshal([]byte(tt.raw), &ts); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if got := ts.Day(); got != tt.want {
			t.Fatalf("unmarshal %s: day=%q want %q", tt.raw, got, tt.want)
		}
	}

	var bad Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &bad); err == nil {
		t.Fatalf("expected error for unparseable timestamp")
	}
}

func TestTaskJSON_DecodesServerRecord(t *testing.T) {
	t.Parallel()

	raw := `{"id":7,"title":"Buy milk","description":"","status":"completed","priority":"high",
		"due_date":"2025-06-01T00:00:00","category":"errand","is_recurring":false,"recurrence_pattern":null,
		"created_at":"2025-05-30T10:00:00","updated_at":null,"completed_at":"2025-05-31T08:00:00","owner_id":3}`
	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if task.ID != 7 || task.Priority != PriorityHigh || task.CategoryLabel() != "errand" || task.DueDay() != "2025-06-01" {
		t.Fatalf("unexpected task: %#v", task)
	}
	if task.CompletedAt == nil || !task.IsCompleted() {
		t.Fatalf("expected completed task with completed_at, got %#v", task)
	}
}

func TestParseEnums(t *testing.T) {
	t.Parallel()

	if p, ok := ParsePriority(" HIGH "); !ok || p != PriorityHigh {
		t.Fatalf("ParsePriority: got %q %v", p, ok)
	}
	if _, ok := ParsePriority("urgent"); ok {
		t.Fatalf("ParsePriority accepted unknown value")
	}
	if s, ok := ParseStatus("completed"); !ok || s != StatusCompleted {
		t.Fatalf("ParseStatus: got %q %v", s, ok)
	}
	if r, ok := ParseRecurrence("Monthly"); !ok || r != RecurrenceMonthly {
		t.Fatalf("ParseRecurrence: got %q %v", r, ok)
	}
	if OptionalString("   ") != nil {
		t.Fatalf("OptionalString should map blank to nil")
	}
}
