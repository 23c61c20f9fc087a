package streams

// Reconcile diffs observations against the known state and returns the
// events to present, in observation order, plus the next known state. The
// input state is never modified.
//
// Channels that no longer appear in observations keep their entry; only an
// explicit offline observation removes one.
func Reconcile(known KnownState, observations []Observation) ([]Event, KnownState) {
	next := known.Clone()
	var events []Event
	for _, obs := range observations {
		prev, wasLive := next[obs.Key]
		switch {
		case !obs.Live && wasLive:
			delete(next, obs.Key)
		case !obs.Live:
		case !wasLive:
			next[obs.Key] = obs.Status
			events = append(events, Event{Kind: WentLive, Key: obs.Key, Status: obs.Status})
		case prev.Activity != obs.Status.Activity:
			next[obs.Key] = obs.Status
			previous := prev
			events = append(events, Event{Kind: ActivityChanged, Key: obs.Key, Status: obs.Status, Previous: &previous})
		}
	}
	return events, next
}
