//go:build !windows

package nativelog

// Writer.mu serializes appends within the process.
func withProcessLogLock(fn func() error) error {
	return fn()
}
