package change

// Subscriber consumes one subscription's change feed. The engine invokes
// OnChange once per change and OnEnd exactly once after the final change.
//
// Delivery is single-threaded per subscription; implementations may
// assume no concurrent OnChange calls, but changes for different keys or
// different subscriptions are not serialized relative to each other.
type Subscriber interface {
	OnChange(key Key, row Row, time int64, isAddition bool) error
	OnEnd() error
}

// Feed delivers a captured stream to a subscriber in order, stopping at
// the first error, and finishes with OnEnd. Useful for replaying recorded
// streams through live-stream consumers.
func Feed(s Stream, sub Subscriber) error {
	for _, c := range s {
		if err := sub.OnChange(c.Key, c.Row, c.Time, c.Diff > 0); err != nil {
			return err
		}
	}
	return sub.OnEnd()
}
