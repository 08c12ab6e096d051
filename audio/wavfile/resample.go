package wavfile

import "math"

// Resample converts src from srcRate to dstRate with a windowed-sinc
// (Lanczos, a=3) filter.
func Resample(src []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(src) == 0 || srcRate <= 0 || dstRate <= 0 {
		return append([]float32(nil), src...)
	}
	n := int(math.Round(float64(len(src)) * float64(dstRate) / float64(srcRate)))
	dst := make([]float32, n)
	ratio := float64(srcRate) / float64(dstRate)
	const a = 3
	for i := 0; i < n; i++ {
		pos := float64(i) * ratio
		idx := int(math.Floor(pos))
		var sum, wsum float64
		for j := idx - a + 1; j <= idx+a; j++ {
			if j < 0 || j >= len(src) {
				continue
			}
			x := float64(j) - pos
			w := sinc(x) * sinc(x/a)
			sum += float64(src[j]) * w
			wsum += w
		}
		if wsum != 0 {
			sum /= wsum
		}
		dst[i] = float32(math.Max(-1, math.Min(1, sum)))
	}
	return dst
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	x *= math.Pi
	return math.Sin(x) / x
}
