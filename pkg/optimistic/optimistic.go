package optimistic

// Do runs the apply/await/revert-on-failure round trip used by UI-facing
// callers: apply the local delta first, run the remote call, and undo the
// delta exactly once if the call fails. The invert function must be the exact
// inverse of apply for the rollback to be safe.
func Do(apply func(), invert func(), call func() error) error {
	apply()
	if err := call(); err != nil {
		invert()
		return err
	}
	return nil
}
