package driven

import "context"

// ScheduleLocker serializes check-then-write sequences that must not
// interleave, such as uniqueness checks before a channel insert or overlap
// checks before a program write.
type ScheduleLocker interface {
	// Lock blocks until every key is held or ctx is done. Keys are acquired in
	// sorted order and duplicates are ignored. The returned function releases
	// all of them and must be called exactly once.
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}
