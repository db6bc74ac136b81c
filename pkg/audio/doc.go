// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines the decoded Clip type and float32 sample conversions
// Package audio provides fundamental audio types used by the soundboard.
//
// This package defines:
//   - Clip: a decoded audio file, frames x channels of float32 samples
//     at the file's native sample rate
//
// It also provides utilities for converting between sample formats:
//   - int16 / N-bit integer to float32
//   - float32 to int16 with clipping
//   - interleaving and de-interleaving frame buffers
//
// Example:
//
//	clip := audio.NewClip("airhorn.wav", 44100, 2, 44100)
//	interleaved := audio.Interleave(clip.Samples, clip.Channels)
package audio
