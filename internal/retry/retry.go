// Package retry runs DB transactions with a bounded retry on contention.
// Two opposing reciprocity checks on the same pair deadlock by design
// (both lock their own row, then read the counterpart's FOR UPDATE); the
// database aborts one and this loop reruns it after the winner committed.
package retry

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"gorm.io/gorm"
)

const maxAttempts = 3

// Transaction runs fn inside database.Transaction, retrying up to
// maxAttempts times when the failure is a lock conflict. Non-contention
// errors, including domain sentinels raised inside fn, abort immediately
// and roll back.
func Transaction(ctx context.Context, database *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(10<<attempt)*time.Millisecond +
				time.Duration(rand.Intn(10))*time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err = database.WithContext(ctx).Transaction(fn)
		if err == nil || !IsContention(err) {
			return err
		}
	}
	return err
}

// IsContention reports whether err is a lock conflict worth retrying:
// MySQL deadlocks / lock wait timeouts, SQLite busy/locked.
func IsContention(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{
		"deadlock",
		"lock wait timeout",
		"database is locked",
		"database table is locked",
		"sqlite_busy",
	} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}
