package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Float32ToPCM16 converts float samples in [-1, 1] to 16-bit PCM, clamping out-of-range values
func Float32ToPCM16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		switch {
		case math.IsNaN(float64(s)):
			out[i] = 0
		case s >= 1:
			out[i] = math.MaxInt16
		case s <= -1:
			out[i] = math.MinInt16
		default:
			out[i] = int16(s * 32767)
		}
	}
	return out
}

// PCM16ToFloat32 converts 16-bit PCM to float samples in [-1.0, 1.0)
func PCM16ToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768.0
	}
	return out
}

// LEToPCM16 converts raw little-endian bytes back to int16 samples.
// A trailing odd byte is dropped.
func LEToPCM16(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	_ = binary.Read(bytes.NewReader(b[:len(out)*2]), binary.LittleEndian, &out)
	return out
}

// ErrTooShort is returned by Resample when the input yields no output samples
var ErrTooShort = errors.New("input too short to resample")

// Resample converts samples from srcRate to dstRate using linear interpolation.
// Any ratio is supported; equal rates return a copy.
func Resample(samples []float32, srcRate, dstRate int) ([]float32, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("unsupported ratio %d:%d", srcRate, dstRate)
	}
	if len(samples) == 0 {
		return []float32{}, nil
	}
	if srcRate == dstRate {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out, nil
	}

	n := int(int64(len(samples)) * int64(dstRate) / int64(srcRate))
	if n == 0 {
		return nil, ErrTooShort
	}

	out := make([]float32, n)
	step := float64(srcRate) / float64(dstRate)
	last := len(samples) - 1
	for i := range out {
		pos := float64(i) * step
		idx := int(pos)
		if idx >= last {
			out[i] = samples[last]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}
	return out, nil
}
