package main

import (
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"timview/internal/tim"
	"timview/internal/version"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "timconv"
	app.Usage = "PlayStation TIM conversion utility"
	app.Version = version.Version

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Print format details for TIM files",
			ArgsUsage: "FILE...",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				for _, path := range c.Args().Slice() {
					img, err := tim.ParseFile(path)
					if err != nil {
						return cli.Exit(err, 1)
					}
					printInfo(img)
				}
				return nil
			},
		},
		{
			Name:      "png",
			Usage:     "Render a TIM to PNG",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "out",
					Usage: "output path (default: FILE with .png extension)",
				},
				&cli.IntFlag{
					Name:  "clut",
					Value: 0,
					Usage: "CLUT row to apply for indexed images",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				path := c.Args().First()
				img, err := tim.ParseFile(path)
				if err != nil {
					return cli.Exit(err, 1)
				}

				var clut *tim.CLUT
				if cluts := img.CLUTs(); len(cluts) > 0 {
					row := c.Int("clut")
					if row < 0 || row >= len(cluts) {
						return cli.Exit(fmt.Errorf("clut row %d out of range (file has %d)", row, len(cluts)), 1)
					}
					clut = cluts[row]
				}

				rendered, err := img.Render(clut)
				if err != nil {
					return cli.Exit(err, 1)
				}

				out := c.String("out")
				if out == "" {
					out = replaceExt(path, ".png")
				}
				f, err := os.Create(out)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()
				if err := png.Encode(f, rendered); err != nil {
					return cli.Exit(err, 1)
				}
				return nil
			},
		},
		{
			Name:      "export-indices",
			Usage:     "Export raw pixel indices as an editable indexed PNG plus JSON sidecar",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "out",
					Usage: "output PNG path (default: FILE with .indices.png extension)",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				path := c.Args().First()
				img, err := tim.ParseFile(path)
				if err != nil {
					return cli.Exit(err, 1)
				}

				out := c.String("out")
				if out == "" {
					out = replaceExt(path, ".indices.png")
				}
				meta, err := img.ExportIndices(out)
				if err != nil {
					return cli.Exit(err, 1)
				}
				fmt.Printf("wrote %s and %s\n", out, meta)
				return nil
			},
		},
		{
			Name:      "import-indices",
			Usage:     "Import an edited indexed PNG back into a TIM",
			ArgsUsage: "TIM PNG",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "out",
					Usage: "output TIM path (default: overwrite TIM)",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				timPath := c.Args().Get(0)
				pngPath := c.Args().Get(1)

				img, err := tim.ParseFile(timPath)
				if err != nil {
					return cli.Exit(err, 1)
				}

				metaPath := replaceExt(pngPath, ".json")
				if _, err := os.Stat(metaPath); err != nil {
					metaPath = ""
				}
				if err := img.ImportIndices(pngPath, metaPath); err != nil {
					return cli.Exit(err, 1)
				}

				data, err := img.EncodeBytes()
				if err != nil {
					return cli.Exit(err, 1)
				}
				out := c.String("out")
				if out == "" {
					out = timPath
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return cli.Exit(err, 1)
				}
				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func printInfo(img *tim.Image) {
	fmt.Printf("%s: %s %dx%d", img.Path, img.Mode, img.PixelWidth(), img.Height)
	if img.HasCLUT {
		fmt.Printf(", %d CLUT row(s)", len(img.CLUTs()))
	}
	fmt.Printf(", VRAM (%d,%d)\n", img.OrigX, img.OrigY)
	for _, c := range img.CLUTs() {
		fmt.Printf("  %s\n", c.Label())
	}
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
