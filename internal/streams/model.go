package streams

// Status is what one live channel looks like during a tick.
type Status struct {
	Channel     string
	DisplayName string
	Activity    string
	Title       string
	IconURL     string
	IconPath    string
}

// Name returns the display name, falling back to the channel identifier.
func (s Status) Name() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Channel
}

// Observation is the outcome of one status query. Live is false when the
// channel is offline or the query failed; Status is meaningful only when Live.
type Observation struct {
	Key    string
	Live   bool
	Status Status
}

// Offline builds an observation for a channel that is not live.
func Offline(key string) Observation {
	return Observation{Key: key}
}

// Live builds an observation for a live channel.
func Live(key string, status Status) Observation {
	return Observation{Key: key, Live: true, Status: status}
}

// EventKind names the transition that produced an event.
type EventKind string

const (
	// WentLive marks an offline to live transition.
	WentLive EventKind = "went_live"
	// ActivityChanged marks a live channel whose activity changed.
	ActivityChanged EventKind = "activity_changed"
)

// Event is one notification-worthy transition.
type Event struct {
	Kind     EventKind
	Key      string
	Status   Status
	Previous *Status
}

// KnownState maps channel keys to the last notified status of every channel
// currently believed live.
type KnownState map[string]Status

// Clone returns an independent copy.
func (k KnownState) Clone() KnownState {
	out := make(KnownState, len(k))
	for key, status := range k {
		out[key] = status
	}
	return out
}

// Keys returns the keys of all live channels in unspecified order.
func (k KnownState) Keys() []string {
	keys := make([]string, 0, len(k))
	for key := range k {
		keys = append(keys, key)
	}
	return keys
}

// SetIconPath records the local icon used for key. Missing keys are ignored.
func (k KnownState) SetIconPath(key, iconPath string) {
	status, ok := k[key]
	if !ok {
		return
	}
	status.IconPath = iconPath
	k[key] = status
}
