// ABOUTME: Audio decoder package for multiple codec support
// ABOUTME: Provides Decoder interface and implementations for WAV, MP3, FLAC, Vorbis, Opus
// Package decode turns audio files into in-memory float32 clips.
//
// Supports: WAV (.wav, .wave), MP3 (.mp3), FLAC (.flac),
// Ogg Vorbis (.ogg, .oga) and Ogg Opus (.opus)
//
// Clips keep the file's native sample rate and channel count, except MP3
// which go-mp3 always delivers as stereo and Opus which libopusfile always
// delivers at 48kHz.
//
// Example:
//
//	clip, err := decode.File("airhorn.mp3")
//	fmt.Println(clip.SampleRate, clip.Channels, clip.Frames())
package decode
