// ABOUTME: Playback error taxonomy
// ABOUTME: Sentinels for decode, driver and generic I/O failures plus user-facing hints
package playback

import (
	"errors"
)

var (
	// ErrDecode means the clip could not be read or decoded; nothing was played
	ErrDecode = errors.New("decode error")

	// ErrPlayback means the audio driver or stream failed
	ErrPlayback = errors.New("playback error")

	// ErrIO is any other failure during playback
	ErrIO = errors.New("i/o error")
)

const playbackHint = "try converting your audio file to a standard sample rate like 48000 Hz or check your PipeWire device settings"

// Hint returns remediation advice for driver failures, or "" for anything else
func Hint(err error) string {
	if errors.Is(err, ErrPlayback) {
		return playbackHint
	}
	return ""
}
