// Package main is the arlens command line tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/arlens/logging"
	"go.viam.com/arlens/pipeline"
	"go.viam.com/arlens/rimage"
)

const (
	// Flags.
	flagIn          = "in"
	flagOut         = "out"
	flagWidth       = "width"
	flagHeight      = "height"
	flagOrientation = "orientation"
	flagCrop        = "crop"
	flagFile        = "file"
	flagDebug       = "debug"
)

func main() {
	logger := logging.NewLogger("arlens")

	app := &cli.App{
		Name:  "arlens",
		Usage: "inspect the detection pipeline offline",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger.SetLevel(logging.DEBUG)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "transform",
				Usage:     "run an image through the model input transform",
				UsageText: "arlens transform --in <path> --out <path> [--width 224] [--height 224] [--orientation 0] [--crop]",
				Flags: []cli.Flag{
					&cli.PathFlag{Name: flagIn, Required: true, Usage: "source image"},
					&cli.PathFlag{Name: flagOut, Required: true, Usage: "where to write the transformed image"},
					&cli.IntFlag{Name: flagWidth, Value: 224, Usage: "target width"},
					&cli.IntFlag{Name: flagHeight, Value: 224, Usage: "target height"},
					&cli.IntFlag{Name: flagOrientation, Usage: "clockwise rotation of the source: 0, 90, 180 or 270"},
					&cli.BoolFlag{Name: flagCrop, Usage: "center-crop to the target aspect ratio instead of stretching"},
				},
				Action: func(c *cli.Context) error {
					return transformAction(c, logger)
				},
			},
			{
				Name:  "config",
				Usage: "work with pipeline config files",
				Subcommands: []*cli.Command{
					{
						Name:      "validate",
						Usage:     "check a pipeline config file and print the resolved config",
						UsageText: "arlens config validate --file <path>",
						Flags: []cli.Flag{
							&cli.PathFlag{Name: flagFile, Required: true, Usage: "JSON config file"},
						},
						Action: func(c *cli.Context) error {
							return validateConfigAction(c, logger)
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func transformAction(c *cli.Context, logger logging.Logger) error {
	img, err := imaging.Open(c.Path(flagIn), imaging.AutoOrientation(true))
	if err != nil {
		return errors.Wrapf(err, "cannot open %q", c.Path(flagIn))
	}
	buf := rimage.NewPixelBufferFromImage(img)
	buf.Orientation = rimage.Orientation(c.Int(flagOrientation))

	result, err := rimage.TransformFrame(buf, c.Int(flagWidth), c.Int(flagHeight), c.Bool(flagCrop))
	if err != nil {
		return err
	}
	if err := imaging.Save(result.Buffer.ToImage(), c.Path(flagOut)); err != nil {
		return errors.Wrapf(err, "cannot write %q", c.Path(flagOut))
	}
	logger.Debugw("transformed image",
		"in", c.Path(flagIn),
		"out", c.Path(flagOut),
		"original_aspect", result.OriginalAspect,
		"processed_aspect", result.ProcessedAspect,
	)
	return nil
}

func validateConfigAction(c *cli.Context, logger logging.Logger) error {
	cfg, err := pipeline.ConfigFromFile(c.Path(flagFile))
	if err != nil {
		return err
	}
	logger.Debugw("config is valid", "file", c.Path(flagFile))
	fmt.Fprintf(c.App.Writer, "%+v\n", *cfg)
	return nil
}
