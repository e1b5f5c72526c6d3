package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DecisionLog represents a single authorization decision entry.
type DecisionLog struct {
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"request_id"`
	UserID       string    `json:"user_id"`
	WorkspaceID  string    `json:"workspace_id,omitempty"`
	ResourceID   string    `json:"resource_id"`
	ResourceType string    `json:"resource_type"`
	Action       string    `json:"action"`
	Allowed      bool      `json:"allowed"`
	Reason       string    `json:"reason,omitempty"`
	FromCache    bool      `json:"from_cache,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
}

// AuditLogger records authorization decisions, human-readable to console
// and JSON lines to an optional file.
type AuditLogger struct {
	mu      sync.Mutex
	enabled bool
	file    *os.File
	console bool
}

var defaultAudit = &AuditLogger{enabled: true, console: false}

// Audit returns the default audit logger.
func Audit() *AuditLogger {
	return defaultAudit
}

// SetOutput sets the audit log output file.
func (l *AuditLogger) SetOutput(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		l.file.Close()
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.file = f
	return nil
}

// SetConsole enables/disables console output.
func (l *AuditLogger) SetConsole(enabled bool) {
	l.mu.Lock()
	l.console = enabled
	l.mu.Unlock()
}

// Log writes a decision entry, assigning a request id and timestamp if unset.
func (l *AuditLogger) Log(entry *DecisionLog) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}

	if entry.RequestID == "" {
		entry.RequestID = uuid.NewString()
	}
	entry.Timestamp = time.Now()

	if l.console {
		verdict := "allow"
		if !entry.Allowed {
			verdict = "deny"
		}
		cached := ""
		if entry.FromCache {
			cached = " [cached]"
		}
		fmt.Printf("[authz] %s %s %s %s/%s %dms%s\n",
			verdict, entry.UserID, entry.Action, entry.ResourceType, entry.ResourceID, entry.DurationMs, cached)
		if entry.Reason != "" {
			fmt.Printf("[authz]   reason: %s\n", entry.Reason)
		}
	}

	if l.file != nil {
		data, _ := json.Marshal(entry)
		l.file.Write(append(data, '\n'))
	}
}

// Close closes the audit log file.
func (l *AuditLogger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}
