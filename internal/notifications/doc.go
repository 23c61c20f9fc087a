// Package notifications presents stream transitions to the user.
//
// Desktop toasts go through beeep and are serialized process-wide: a
// notification holds the presentation slot for its whole display duration,
// so two never overlap. An ntfy topic can mirror the same messages to a
// phone. Callers depend only on the Service interface.
package notifications
