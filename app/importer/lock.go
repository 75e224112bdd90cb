package importer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/lysyi3m/news-importer/app/database"
)

// LockOption is the option row holding the lock expiry as a unix timestamp
const LockOption = "feed_import_process_expires"

// LockGrace lets a run start slightly before the previous expiry, so a
// scheduler ticking at the lock TTL is not refused by clock jitter
const LockGrace = time.Minute

// Lock is an advisory, timestamp based guard against overlapping runs.
// Check and set are two statements; concurrent triggers may both pass.
type Lock struct {
	options database.OptionRepository
	ttl     time.Duration
	now     func() time.Time
}

func NewLock(options database.OptionRepository, ttl time.Duration) *Lock {
	return &Lock{
		options: options,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Expiry returns the recorded expiry, or the zero time when no lock was ever set
func (l *Lock) Expiry(ctx context.Context) (time.Time, error) {
	option, err := l.options.GetOption(ctx, LockOption)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read import lock: %w", err)
	}
	if option == nil || option.Value == "" {
		return time.Time{}, nil
	}

	expires, err := strconv.ParseInt(option.Value, 10, 64)
	if err != nil {
		// unreadable value counts as expired
		return time.Time{}, nil
	}
	return time.Unix(expires, 0), nil
}

// Active reports whether the recorded expiry is more than LockGrace away
func (l *Lock) Active(ctx context.Context) (bool, error) {
	expiry, err := l.Expiry(ctx)
	if err != nil {
		return false, err
	}
	if expiry.IsZero() {
		return false, nil
	}
	return expiry.Unix() > l.now().Add(LockGrace).Unix(), nil
}

// Acquire sets the expiry to now+ttl, or returns ErrLockActive
func (l *Lock) Acquire(ctx context.Context) error {
	active, err := l.Active(ctx)
	if err != nil {
		return err
	}
	if active {
		return ErrLockActive
	}

	expires := l.now().Add(l.ttl).Unix()
	if err := l.options.SetOption(ctx, LockOption, strconv.FormatInt(expires, 10)); err != nil {
		return fmt.Errorf("failed to set import lock: %w", err)
	}
	return nil
}
