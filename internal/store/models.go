package store

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether no further transition is permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one user's request to print one document with one settings
// snapshot. The owning user never changes after creation; CompletedAt is
// set exactly when the status is terminal.
type Job struct {
	ID           string     `json:"id"`
	UserID       int64      `json:"user_id"`
	DocumentName string     `json:"document_name"`
	DocumentPath string     `json:"document_path"`
	PaperType    string     `json:"paper_type"`
	PrintQuality int        `json:"print_quality"`
	ColorMode    string     `json:"color_mode"`
	PaperSize    string     `json:"paper_size"`
	Status       Status     `json:"status"`
	DeviceToken  string     `json:"device_token,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// User rows are consumed for ownership checks and login only; account
// management is not this service's concern.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
