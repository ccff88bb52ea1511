// Package rimage normalizes raw camera frames into the fixed-size RGB input an inference model
// expects: rotation by a multiple of 90 degrees, center crop to an aspect ratio and bilinear resize.
package rimage

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/pkg/errors"
)

// RGBChannels is the only channel count a PixelBuffer may carry.
const RGBChannels = 3

// Orientation is the clockwise rotation, in degrees, that brings a raw frame upright.
type Orientation int

// The canonical orientations.
const (
	Orientation0   Orientation = 0
	Orientation90  Orientation = 90
	Orientation180 Orientation = 180
	Orientation270 Orientation = 270
)

// Valid reports whether o is one of the four canonical orientations.
func (o Orientation) Valid() bool {
	switch o {
	case Orientation0, Orientation90, Orientation180, Orientation270:
		return true
	}
	return false
}

// SwapsAxes reports whether rotating by o exchanges width and height.
func (o Orientation) SwapsAxes() bool {
	return o == Orientation90 || o == Orientation270
}

// PixelBuffer is a packed row-major RGB image, 3 bytes per pixel, origin top-left.
type PixelBuffer struct {
	Data     []byte
	Width    int
	Height   int
	Channels int
	// Orientation is how the frame must be rotated to appear upright.
	Orientation Orientation
}

// NewPixelBuffer allocates a zeroed RGB buffer.
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		Data:     make([]byte, width*height*RGBChannels),
		Width:    width,
		Height:   height,
		Channels: RGBChannels,
	}
}

// Validate checks the dimensions, channel count and data length of the buffer.
func (pb *PixelBuffer) Validate() error {
	if pb == nil {
		return errors.New("pixel buffer is nil")
	}
	if pb.Width <= 0 || pb.Height <= 0 {
		return errors.Errorf("invalid pixel buffer dimensions (%d, %d)", pb.Width, pb.Height)
	}
	if pb.Channels != RGBChannels {
		return errors.Errorf("pixel buffer must have %d channels but has %d", RGBChannels, pb.Channels)
	}
	if want := pb.Width * pb.Height * pb.Channels; len(pb.Data) != want {
		return errors.Errorf("pixel buffer data length %d does not match %dx%dx%d", len(pb.Data), pb.Width, pb.Height, pb.Channels)
	}
	if !pb.Orientation.Valid() {
		return errors.Errorf("invalid orientation %d", pb.Orientation)
	}
	return nil
}

// Aspect returns width over height.
func (pb *PixelBuffer) Aspect() float64 {
	return float64(pb.Width) / float64(pb.Height)
}

func (pb *PixelBuffer) offset(x, y int) int {
	return (y*pb.Width + x) * pb.Channels
}

// ToImage copies the buffer into an *image.RGBA.
func (pb *PixelBuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, pb.Width, pb.Height))
	for y := 0; y < pb.Height; y++ {
		for x := 0; x < pb.Width; x++ {
			i := pb.offset(x, y)
			img.SetRGBA(x, y, color.RGBA{R: pb.Data[i], G: pb.Data[i+1], B: pb.Data[i+2], A: 255})
		}
	}
	return img
}

// NewPixelBufferFromImage converts any image into an upright RGB buffer, dropping alpha.
func NewPixelBufferFromImage(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	pb := NewPixelBuffer(bounds.Dx(), bounds.Dy())
	for y := 0; y < pb.Height; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < pb.Width; x++ {
			copy(pb.Data[pb.offset(x, y):pb.offset(x, y)+3], row[x*4:x*4+3])
		}
	}
	return pb
}
