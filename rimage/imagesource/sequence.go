package imagesource

import (
	"context"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"go.viam.com/arlens/rimage"
)

// SequenceOptions controls how still images are turned into frames.
type SequenceOptions struct {
	// FramesPerImage is how many consecutive NextFrame calls return the same image. Values
	// below one mean one.
	FramesPerImage int
	// Letterbox pads every image with black to a centered square.
	Letterbox bool
	// MaxDimension, when non-zero, shrinks images so neither side exceeds it, keeping aspect.
	MaxDimension uint
	// Orientation is stamped on every frame, simulating a camera mounted sideways.
	Orientation rimage.Orientation
}

// NewSequence decodes the image files at paths concurrently and returns them as a looping
// frame sequence.
func NewSequence(ctx context.Context, paths []string, opts SequenceOptions) (*Sequence, error) {
	if len(paths) == 0 {
		return nil, errors.New("image sequence needs at least one path")
	}
	imgs := make([]image.Image, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := imaging.Open(path, imaging.AutoOrientation(true))
			if err != nil {
				return errors.Wrapf(err, "loading frame %q", path)
			}
			imgs[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewSequenceFromImages(imgs, opts)
}

// NewSequenceFromImages converts already decoded images into a looping frame sequence.
func NewSequenceFromImages(imgs []image.Image, opts SequenceOptions) (*Sequence, error) {
	if !opts.Orientation.Valid() {
		return nil, errors.Errorf("invalid orientation %d", opts.Orientation)
	}
	frames := make([]*rimage.PixelBuffer, 0, len(imgs))
	for i, img := range imgs {
		if img == nil || img.Bounds().Empty() {
			return nil, errors.Errorf("frame %d is empty", i)
		}
		if opts.MaxDimension > 0 {
			img = resize.Thumbnail(opts.MaxDimension, opts.MaxDimension, img, resize.Bilinear)
		}
		if opts.Letterbox {
			img = Letterbox(img)
		}
		frame := rimage.NewPixelBufferFromImage(img)
		frame.Orientation = opts.Orientation
		frames = append(frames, frame)
	}
	return newSequence(frames, opts.FramesPerImage)
}

// Letterbox centers img on a black square whose side is the image's larger dimension.
func Letterbox(img image.Image) image.Image {
	b := img.Bounds()
	side := max(b.Dx(), b.Dy())
	if b.Dx() == b.Dy() {
		return img
	}
	bg := imaging.New(side, side, color.NRGBA{A: 255})
	return imaging.Paste(bg, img, image.Pt((side-b.Dx())/2, (side-b.Dy())/2))
}
