package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/storacha/resume-converter/pkg/build"
	"github.com/storacha/resume-converter/pkg/convert"
	"github.com/urfave/cli/v2"
)

var convertCmd = &cli.Command{
	Name:      "convert",
	Usage:     "convert a local file to PDF without touching S3",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "path of the PDF to write (defaults to the input path with a .pdf extension)",
		},
	},
	Action: func(cCtx *cli.Context) error {
		if cCtx.NArg() != 1 {
			return fmt.Errorf("expected exactly one file to convert")
		}
		in := cCtx.Args().First()
		out := cCtx.String("output")
		if out == "" {
			out = strings.TrimSuffix(in, filepath.Ext(in)) + ".pdf"
		}

		registry := convert.DefaultRegistry(convert.WithCreator(build.UserAgent))
		converter, err := registry.Lookup(filepath.Ext(in))
		if err != nil {
			return fmt.Errorf("%w (supported: %s)", err, strings.Join(registry.Extensions(), ", "))
		}
		if err := converter.Convert(cCtx.Context, in, out); err != nil {
			return err
		}

		pages, err := convert.PageCount(out)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d pages)\n", out, pages)
		return nil
	},
}
