package logger

import (
	"sync"
)

// moduleLoggers caches one logger per loaded module. The cache is dropped
// whenever the global logger changes so module loggers follow its config.
var moduleLoggers = &moduleRegistry{
	loggers: make(map[string]*Logger),
}

type moduleRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

// ForModule returns the logger for the named module: the global logger tagged
// with component "module" and the module field. Loggers installed with
// SetModuleLogger take precedence.
func ForModule(name string) *Logger {
	moduleLoggers.mu.RLock()
	l, ok := moduleLoggers.loggers[name]
	moduleLoggers.mu.RUnlock()
	if ok {
		return l
	}

	moduleLoggers.mu.Lock()
	defer moduleLoggers.mu.Unlock()
	if l, ok := moduleLoggers.loggers[name]; ok {
		return l
	}
	l = GetGlobalLogger().WithComponent("module").WithFields(map[string]interface{}{FieldModule: name})
	moduleLoggers.loggers[name] = l
	return l
}

// SetModuleLogger overrides the logger ForModule returns for name, e.g. to
// raise the level of one noisy module.
func SetModuleLogger(name string, l *Logger) {
	moduleLoggers.mu.Lock()
	defer moduleLoggers.mu.Unlock()
	moduleLoggers.loggers[name] = l
}

func resetModuleLoggers() {
	moduleLoggers.mu.Lock()
	defer moduleLoggers.mu.Unlock()
	moduleLoggers.loggers = make(map[string]*Logger)
}
