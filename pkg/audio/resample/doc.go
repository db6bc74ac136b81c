// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts whole decoded clips between sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation over the whole clip: a clip of N frames becomes
// round(N * outputRate / inputRate) frames, and output frame i is read from
// input position i * N / newN. Positions past the last input frame hold the
// last sample. This is not a band-limited resampler; downsampling aliases.
//
// Example:
//
//	r := resample.New(44100, 48000, 2)
//	out := r.Resample(clip.Samples)
package resample
