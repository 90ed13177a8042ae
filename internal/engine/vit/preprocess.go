package vit

import (
	"image"

	"github.com/plantscope/plantscope/internal/engine/imaging"
)

// Per-channel normalization used by the ViT image processor: every channel
// is scaled to [0,1] and then shifted by mean 0.5 / std 0.5.
const (
	normMean = 0.5
	normStd  = 0.5
)

// preprocess resizes img to side×side and converts it to a flat CHW float32
// tensor normalized for the ViT model.
func preprocess(img image.Image, side int) []float32 {
	resized := imaging.Resize(img, side, side)

	plane := side * side
	pixels := make([]float32, 3*plane)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			c := resized.NRGBAAt(x, y)
			i := y*side + x
			pixels[i] = (float32(c.R)/255 - normMean) / normStd
			pixels[plane+i] = (float32(c.G)/255 - normMean) / normStd
			pixels[2*plane+i] = (float32(c.B)/255 - normMean) / normStd
		}
	}
	return pixels
}
