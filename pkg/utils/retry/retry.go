package retry

import "time"

// WithDelay runs fn up to attempts times, sleeping delay between tries.
// Returns the last error when every attempt failed.
func WithDelay(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
