package logger

import "sync"

var warned sync.Map

// WarnOnce logs msg at warn level the first time key is seen in this process.
func WarnOnce(key, msg string, args ...any) {
	if _, seen := warned.LoadOrStore(key, struct{}{}); seen {
		return
	}
	Warn(msg, args...)
}

func resetWarnOnce() {
	warned.Range(func(k, _ any) bool {
		warned.Delete(k)
		return true
	})
}
