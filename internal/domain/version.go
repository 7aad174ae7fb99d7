package domain

// MaxUpdateAttempts bounds the optimistic read-modify-write loops on rows
// guarded by a version column.
const MaxUpdateAttempts = 5

// RetryVersioned runs attempt until it reports that its version-guarded
// write landed (or that nothing needed writing), at most attempts times.
// An error from attempt stops the loop and is returned as is.
func RetryVersioned(attempts int, attempt func() (landed bool, err error)) error {
	for i := 0; i < attempts; i++ {
		landed, err := attempt()
		if err != nil {
			return err
		}
		if landed {
			return nil
		}
	}
	return ErrConcurrentUpdate
}
