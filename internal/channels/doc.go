// Package channels reads the list of tracked channel names.
package channels
