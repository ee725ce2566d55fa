package transport

import (
	"encoding/json"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// Envelope is the small status body returned by mutating API calls:
// {"ok":true} on success, {"error":"..."} on failure.
type Envelope struct {
	OK    bool   `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess() Envelope {
	return Envelope{OK: true}
}

// NewError returns an error envelope.
func NewError(code, message string) Envelope {
	return Envelope{Code: code, Error: message}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// TaskResponse is one element of the GET /tasks array.
type TaskResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	DueDate   *string   `json:"due_date"`
	Note      *string   `json:"note"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

func NewTaskResponse(task domain.Task) TaskResponse {
	return TaskResponse{
		ID:        task.ID,
		Title:     task.Title,
		DueDate:   domain.FormatDate(task.DueDate),
		Note:      task.Note,
		Done:      task.Done,
		CreatedAt: task.CreatedAt.UTC(),
	}
}

// NewTaskList converts tasks preserving order; it never returns nil so an empty list encodes as [].
func NewTaskList(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
	}
	return out
}
