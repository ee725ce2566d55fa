package domain

import (
	"strings"
	"time"
)

const (
	// DateLayout is the calendar-date encoding used for due dates on the wire and in SQLite.
	DateLayout = "2006-01-02"

	MaxTitleLength = 255
)

// Task represents a user-owned to-do item.
type Task struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"-"`
	Title     string     `json:"title"`
	DueDate   *time.Time `json:"due_date"`
	Note      *string    `json:"note"`
	Done      bool       `json:"done"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewTask validates raw input and builds an unsaved task for the given owner.
// Blank due dates and notes become nil.
func NewTask(userID int64, title, dueDate, note string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len([]rune(title)) > MaxTitleLength {
		return nil, ErrTitleTooLong
	}

	task := &Task{UserID: userID, Title: title}

	if dueDate = strings.TrimSpace(dueDate); dueDate != "" {
		parsed, err := ParseDate(dueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = &parsed
	}
	if note != "" {
		task.Note = &note
	}
	return task, nil
}

// ParseDate parses a YYYY-MM-DD calendar date into a UTC midnight timestamp.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, WrapError(ErrCodeInvalid, ErrInvalidDueDate.Message, err)
	}
	return parsed, nil
}

// FormatDate renders a due date, or nil when absent.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
