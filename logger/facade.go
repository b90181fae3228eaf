package logger

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Category classifies a facade log entry.
type Category int

const (
	CategoryDebug Category = iota
	CategoryException
	CategoryInfo
	CategoryWarn
)

func (c Category) String() string {
	switch c {
	case CategoryDebug:
		return "Debug"
	case CategoryException:
		return "Exception"
	case CategoryInfo:
		return "Info"
	case CategoryWarn:
		return "Warn"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Priority ranks a facade log entry.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityNone:
		return "None"
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// Facade is the minimal logging capability the composition runtime depends on.
// Anything that can record a message with a category and priority can serve.
type Facade interface {
	Log(message string, category Category, priority Priority)
}

// Log implements Facade on top of zerolog. The category picks the level and
// the priority is recorded as a field.
func (l *Logger) Log(message string, category Category, priority Priority) {
	fields := map[string]interface{}{FieldPriority: priority.String()}
	switch category {
	case CategoryException:
		l.Error(message, fields)
	case CategoryWarn:
		l.Warn(message, fields)
	case CategoryInfo:
		l.Info(message, fields)
	default:
		l.Debug(message, fields)
	}
}

// TextFacade writes one plain-text line per entry:
//
//	2024-01-02 15:04:05 Debug(Low): Creating module catalog.
type TextFacade struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// NewTextFacade creates a TextFacade writing to out.
func NewTextFacade(out io.Writer) *TextFacade {
	return &TextFacade{out: out, now: time.Now}
}

// Log implements Facade.
func (f *TextFacade) Log(message string, category Category, priority Priority) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fmt.Fprintf(f.out, "%s %s(%s): %s\n",
		f.now().Format("2006-01-02 15:04:05"), category, priority, message)
}
