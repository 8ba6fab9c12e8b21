package logger

import "sync"

// pinned holds loggers registered under a component or backend name. Names
// not pinned resolve against the global logger at call time, so they follow
// a later Init.
var pinned = struct {
	sync.RWMutex
	loggers map[string]*Logger
}{loggers: map[string]*Logger{}}

// Register pins name to l. Get(name) returns l until Unregister.
func Register(name string, l *Logger) {
	pinned.Lock()
	pinned.loggers[name] = l
	pinned.Unlock()
}

// Unregister removes a pinned logger.
func Unregister(name string) {
	pinned.Lock()
	delete(pinned.loggers, name)
	pinned.Unlock()
}

// Get returns the logger pinned under name, or the global logger tagged
// with name as its component.
func Get(name string) *Logger {
	pinned.RLock()
	l, ok := pinned.loggers[name]
	pinned.RUnlock()
	if ok {
		return l
	}
	return WithComponent(name)
}
