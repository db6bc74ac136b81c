// ABOUTME: Whole-clip linear resampler for converting audio sample rates
// ABOUTME: Resamples each channel independently onto an evenly spaced grid
package resample

import "math"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
	}
}

// OutputFrames returns round(inputFrames * outputRate / inputRate)
func (r *Resampler) OutputFrames(inputFrames int) int {
	return FrameCount(inputFrames, r.inputRate, r.outputRate)
}

// Resample converts frames x channels input at inputRate to outputRate.
// Equal rates return the input slice untouched.
func (r *Resampler) Resample(input [][]float32) [][]float32 {
	if r.inputRate == r.outputRate {
		return input
	}

	inputFrames := len(input)
	outputFrames := r.OutputFrames(inputFrames)
	if inputFrames == 0 || outputFrames == 0 {
		return [][]float32{}
	}

	output := make([][]float32, outputFrames)
	backing := make([]float32, outputFrames*r.channels)
	for i := range output {
		output[i] = backing[i*r.channels : (i+1)*r.channels : (i+1)*r.channels]
	}

	// Every channel uses the same positions: i * N / newN, split in integer
	// arithmetic so exact source frames are never missed by rounding
	last := inputFrames - 1

	for i := 0; i < outputFrames; i++ {
		num := i * inputFrames
		idx := num / outputFrames

		if idx >= last {
			for ch := 0; ch < r.channels; ch++ {
				output[i][ch] = input[last][ch]
			}
			continue
		}

		frac := float64(num%outputFrames) / float64(outputFrames)
		for ch := 0; ch < r.channels; ch++ {
			s1 := float64(input[idx][ch])
			s2 := float64(input[idx+1][ch])
			output[i][ch] = float32(s1 + frac*(s2-s1))
		}
	}

	return output
}

// FrameCount returns the resampled length of a clip of n frames
func FrameCount(n, fromRate, toRate int) int {
	if fromRate <= 0 || fromRate == toRate {
		return n
	}
	return int(math.Round(float64(n) * float64(toRate) / float64(fromRate)))
}

// Linear resamples frames x channels samples from fromRate to toRate
func Linear(samples [][]float32, channels, fromRate, toRate int) [][]float32 {
	return New(fromRate, toRate, channels).Resample(samples)
}
