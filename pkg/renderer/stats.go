package renderer

import "time"

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width        int           // Buffer width in pixels
	Height       int           // Buffer height in pixels
	TotalPixels  int           // Number of pixels rendered
	TotalSamples int64         // Number of primary rays traced
	Workers      int           // Number of workers used
	Elapsed      time.Duration // Wall-clock render time
	Canceled     bool          // The render stopped before every pixel was done
}

// SamplesPerPixel returns the average number of primary rays per pixel
func (s RenderStats) SamplesPerPixel() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.TotalSamples) / float64(s.TotalPixels)
}

// PixelsPerSecond returns the render throughput
func (s RenderStats) PixelsPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.TotalPixels) / s.Elapsed.Seconds()
}

// Completion returns the fraction of the image that was rendered
func (s RenderStats) Completion() float64 {
	total := s.Width * s.Height
	if total == 0 {
		return 1
	}
	return float64(s.TotalPixels) / float64(total)
}
