package model

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Recurrence string

const (
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
)

type Task struct {
	ID                int         `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description,omitempty"`
	Status            TaskStatus  `json:"status"`
	Priority          Priority    `json:"priority"`
	DueDate           *Timestamp  `json:"due_date"`
	Category          *string     `json:"category"`
	IsRecurring       bool        `json:"is_recurring"`
	RecurrencePattern *Recurrence `json:"recurrence_pattern"`
	CreatedAt         Timestamp   `json:"created_at"`
	UpdatedAt         *Timestamp  `json:"updated_at"`
	CompletedAt       *Timestamp  `json:"completed_at"`
	OwnerID           int         `json:"owner_id"`
}

// Normalize enforces the local task invariants: completed_at is set iff status is completed,
// and recurrence_pattern is nil unless is_recurring.
// now is used when a completed task arrives without a completion time.
func (t *Task) Normalize(now time.Time) {
	if t == nil {
		return
	}
	if t.Status == StatusCompleted {
		if t.CompletedAt == nil || t.CompletedAt.IsZero() {
			ts := NewTimestamp(now)
			t.CompletedAt = &ts
		}
	} else {
		t.CompletedAt = nil
	}
	if !t.IsRecurring {
		t.RecurrencePattern = nil
	}
}

func (t Task) IsCompleted() bool { return t.Status == StatusCompleted }

func (t Task) CategoryLabel() string {
	if t.Category == nil {
		return ""
	}
	return strings.TrimSpace(*t.Category)
}

// DueDay is the YYYY-MM-DD of the due date, or "" when unset.
func (t Task) DueDay() string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Day()
}

type Note struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Content   *string    `json:"content"`
	Category  *string    `json:"category"`
	IsPinned  bool       `json:"is_pinned"`
	CreatedAt Timestamp  `json:"created_at"`
	UpdatedAt *Timestamp `json:"updated_at"`
	OwnerID   int        `json:"owner_id"`
}

func (n Note) ContentText() string {
	if n.Content == nil {
		return ""
	}
	return *n.Content
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// TaskDraft is the create payload for a task. DueDate keeps the ISO-8601 text the user
// (or the agent) supplied so it reaches the backend unchanged.
type TaskDraft struct {
	Title             string      `json:"title" validate:"notblank,max=200"`
	Description       string      `json:"description"`
	Priority          Priority    `json:"priority,omitempty" validate:"omitempty,task_priority"`
	DueDate           *string     `json:"due_date" validate:"omitempty,isodate"`
	Category          *string     `json:"category"`
	IsRecurring       bool        `json:"is_recurring"`
	RecurrencePattern *Recurrence `json:"recurrence_pattern,omitempty" validate:"omitempty,task_recurrence"`
	Status            TaskStatus  `json:"status,omitempty"`
	OwnerID           int         `json:"owner_id,omitempty"`
}

// TaskPatch carries only the fields being changed; nil means "leave as is".
type TaskPatch struct {
	Title             *string     `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description       *string     `json:"description,omitempty"`
	Status            *TaskStatus `json:"status,omitempty" validate:"omitempty,task_status"`
	Priority          *Priority   `json:"priority,omitempty" validate:"omitempty,task_priority"`
	DueDate           *string     `json:"due_date,omitempty" validate:"omitempty,isodate"`
	Category          *string     `json:"category,omitempty"`
	IsRecurring       *bool       `json:"is_recurring,omitempty"`
	RecurrencePattern *Recurrence `json:"recurrence_pattern,omitempty" validate:"omitempty,task_recurrence"`
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil &&
		p.DueDate == nil && p.Category == nil && p.IsRecurring == nil && p.RecurrencePattern == nil
}

type NoteDraft struct {
	Title    string  `json:"title" validate:"notblank,max=200"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
	IsPinned bool    `json:"is_pinned"`
}

type NotePatch struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Content  *string `json:"content,omitempty"`
	Category *string `json:"category,omitempty"`
	IsPinned *bool   `json:"is_pinned,omitempty"`
}

func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Category == nil && p.IsPinned == nil
}

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

type MessageKind string

const (
	MessageText         MessageKind = "text"
	MessageCommand      MessageKind = "command"
	MessageConfirmation MessageKind = "confirmation"
	MessageError        MessageKind = "error"
	MessageInfo         MessageKind = "info"
)

type ChatMessage struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Sender    Sender      `json:"sender"`
	Timestamp time.Time   `json:"timestamp"`
	Kind      MessageKind `json:"kind"`

	// Rendering annotations (preview notices and confirmations).
	Priority *Priority `json:"priority,omitempty"`
	Category *string   `json:"category,omitempty"`
	DueDate  *string   `json:"dueDate,omitempty"`
}

// TaskPreview is an agent-proposed task awaiting explicit confirmation.
type TaskPreview struct {
	Draft      TaskDraft `json:"draft"`
	ProposedAt time.Time `json:"proposedAt"`
}

// OptionalString returns nil for blank input so optional fields go out as null.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityHigh:
		return PriorityHigh, true
	}
	return "", false
}

func ParseStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusCompleted:
		return StatusCompleted, true
	}
	return "", false
}

func ParseRecurrence(s string) (Recurrence, bool) {
	switch Recurrence(strings.ToLower(strings.TrimSpace(s))) {
	case RecurrenceDaily:
		return RecurrenceDaily, true
	case RecurrenceWeekly:
		return RecurrenceWeekly, true
	case RecurrenceMonthly:
		return RecurrenceMonthly, true
	case RecurrenceYearly:
		return RecurrenceYearly, true
	}
	return "", false
}
