package twitch

import (
	"encoding/json"
	"errors"
	"fmt"

	"streamwatch/internal/streams"
)

var (
	// ErrOffline reports a payload whose stream is null.
	ErrOffline = errors.New("channel is offline")
	// ErrNotLive reports a stream whose type is not "live" (e.g. a rerun).
	ErrNotLive = errors.New("stream is not live")
	// ErrMalformed reports a payload that is missing required fields or is not JSON.
	ErrMalformed = errors.New("malformed stream payload")
)

const liveStreamType = "live"

type fields map[string]json.RawMessage

// ParseStatus converts a streams endpoint body into a status. It returns
// ErrOffline, ErrNotLive, or an error wrapping ErrMalformed when the body
// does not describe a live stream.
func ParseStatus(channel string, body []byte) (streams.Status, error) {
	var root fields
	if err := json.Unmarshal(body, &root); err != nil {
		return streams.Status{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	rawStream, ok := root["stream"]
	if !ok {
		return streams.Status{}, fmt.Errorf("%w: no stream field", ErrMalformed)
	}
	if isNull(rawStream) {
		return streams.Status{}, ErrOffline
	}

	var stream fields
	if err := json.Unmarshal(rawStream, &stream); err != nil {
		return streams.Status{}, fmt.Errorf("%w: stream: %v", ErrMalformed, err)
	}
	streamType, err := stream.text("stream_type")
	if err != nil {
		return streams.Status{}, err
	}
	activity, err := stream.text("game")
	if err != nil {
		return streams.Status{}, err
	}
	rawChannel, ok := stream["channel"]
	if !ok || isNull(rawChannel) {
		return streams.Status{}, fmt.Errorf("%w: no channel in stream", ErrMalformed)
	}
	var ch fields
	if err := json.Unmarshal(rawChannel, &ch); err != nil {
		return streams.Status{}, fmt.Errorf("%w: channel: %v", ErrMalformed, err)
	}
	title, err := ch.text("status")
	if err != nil {
		return streams.Status{}, err
	}
	displayName, err := ch.text("display_name")
	if err != nil {
		return streams.Status{}, err
	}

	if streamType != liveStreamType {
		return streams.Status{}, fmt.Errorf("%w: type %q", ErrNotLive, streamType)
	}

	logo, _ := ch.optionalText("logo")
	return streams.Status{
		Channel:     channel,
		DisplayName: displayName,
		Activity:    activity,
		Title:       title,
		IconURL:     logo,
	}, nil
}

// text returns a required key. A present null decodes to "".
func (f fields) text(key string) (string, error) {
	if _, ok := f[key]; !ok {
		return "", fmt.Errorf("%w: no %s", ErrMalformed, key)
	}
	value, err := f.optionalText(key)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return value, nil
}

func (f fields) optionalText(key string) (string, error) {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return "", nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", err
	}
	return value, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
