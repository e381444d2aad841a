package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypePlan          EventType = "plan"
	EventTypePlanFallback  EventType = "plan_fallback"
	EventTypeLLM           EventType = "llm"
	EventTypeCost          EventType = "cost"
	EventTypeStep          EventType = "step"
	EventTypeGoalCompleted EventType = "goal_completed"
	EventTypeRequest       EventType = "request"
	EventTypePolicyCheck   EventType = "policy_check"
	EventTypeHeartbeat     EventType = "heartbeat"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	OwnerID   string    `json:"owner_id,omitempty"`
	GoalID    string    `json:"goal_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging.
type Logger struct {
	mu         sync.Mutex
	out        io.Writer
	llmLogPath string
	maxSize    int64
}

func NewLogger() *Logger {
	return &Logger{
		out:        os.Stdout,
		llmLogPath: filepath.Join("logs", "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// NewWriterLogger logs events to w and keeps no llm transcript file.
func NewWriterLogger(w io.Writer) *Logger {
	return &Logger{out: w}
}

// Log emits a structured JSON event, one per line.
func (l *Logger) Log(evt Event) {
	if l == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"error": "failed to marshal event: %v"}`, err))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, string(data))

	if evt.Type == EventTypeLLM && l.llmLogPath != "" {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogPlan(goalText string, steps int, source string) {
	l.Log(Event{
		Type: EventTypePlan,
		Data: map[string]any{
			"goal":   goalText,
			"steps":  steps,
			"source": source,
		},
	})
}

func (l *Logger) LogFallback(goalText string, reason error) {
	l.Log(Event{
		Type: EventTypePlanFallback,
		Data: map[string]string{
			"goal":   goalText,
			"reason": reason.Error(),
		},
	})
}

func (l *Logger) LogLLM(prompt any, response string, toolCalls any) {
	l.Log(Event{
		Type: EventTypeLLM,
		Data: map[string]any{
			"prompt":     prompt,
			"response":   response,
			"tool_calls": toolCalls,
		},
	})
}

func (l *Logger) LogCost(promptTokens, completionTokens int, model string) {
	l.Log(Event{
		Type: EventTypeCost,
		Data: map[string]any{
			"prompt_tokens":     promptTokens,
			"completion_tokens": completionTokens,
			"total_tokens":      promptTokens + completionTokens,
			"model":             model,
		},
	})
}

func (l *Logger) LogStep(ownerID, goalID, stepID string, completed bool) {
	l.Log(Event{
		Type:    EventTypeStep,
		OwnerID: ownerID,
		GoalID:  goalID,
		Data: map[string]any{
			"step_id":   stepID,
			"completed": completed,
		},
	})
}

func (l *Logger) LogGoalCompleted(ownerID, goalID string, steps int) {
	l.Log(Event{
		Type:    EventTypeGoalCompleted,
		OwnerID: ownerID,
		GoalID:  goalID,
		Data:    map[string]int{"steps": steps},
	})
}

func (l *Logger) LogRequest(ownerID, method, path string, status int, latency time.Duration) {
	l.Log(Event{
		Type:    EventTypeRequest,
		OwnerID: ownerID,
		Data: map[string]any{
			"method":     method,
			"path":       path,
			"status":     status,
			"latency_ms": latency.Milliseconds(),
		},
	})
}

func (l *Logger) LogPolicy(ownerID, action, effect, reason string) {
	l.Log(Event{
		Type:    EventTypePolicyCheck,
		OwnerID: ownerID,
		Data: map[string]string{
			"action": action,
			"effect": effect,
			"reason": reason,
		},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}
