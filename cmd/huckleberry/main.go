// Command huckleberry is the Thrift IDL compiler front end: it
// checks, formats, and derives IDL files without generating code.
//
// Usage:
//
//	huckleberry check [-I dir] <file>...
//	huckleberry fmt [-w] <file>...
//	huckleberry extract [-o file] <go-package>...
//	huckleberry version
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/blockberries/huckleberry/pkg/compile"
	"github.com/blockberries/huckleberry/pkg/extract"
	"github.com/blockberries/huckleberry/pkg/idl"
	"github.com/blockberries/huckleberry/pkg/render"
)

// Version is set by ldflags at build time.
var Version = "dev"

func main() {
	app := &cli.App{
		Name:  "huckleberry",
		Usage: "Compile, format, and derive Thrift IDL files",
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Parse, compile, and link Thrift files, reporting errors",
				ArgsUsage: "<file>...",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "include",
						Aliases: []string{"I"},
						Usage:   "Add an include search path (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "non-strict",
						Usage: "Do not require explicit requiredness on struct fields",
					},
				},
				Action: cmdCheck,
			},
			{
				Name:      "fmt",
				Usage:     "Format Thrift files canonically",
				ArgsUsage: "<file>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "write",
						Aliases: []string{"w"},
						Usage:   "Rewrite files in place instead of printing",
					},
				},
				Action: cmdFmt,
			},
			{
				Name:      "extract",
				Usage:     "Derive Thrift IDL from Go struct definitions",
				ArgsUsage: "<go-package>...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the IDL to a file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "private",
						Usage: "Include unexported types",
					},
				},
				Action: cmdExtract,
			},
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(*cli.Context) error {
					fmt.Println("huckleberry " + Version)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func cmdCheck(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("check: no input files", 1)
	}
	loader := compile.NewLoader(c.StringSlice("include")...)
	loader.NonStrict = c.Bool("non-strict")

	failed := false
	for _, path := range c.Args().Slice() {
		if _, err := loader.LoadFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("%s: ok\n", path)
	}
	if failed {
		return cli.Exit("", 1)
	}
	return nil
}

func cmdFmt(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("fmt: no input files", 1)
	}
	for _, path := range c.Args().Slice() {
		source, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		program, err := idl.Parse(path, string(source))
		if err != nil {
			return err
		}
		formatted := render.Program(program)
		if c.Bool("write") {
			if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
				return err
			}
			continue
		}
		fmt.Print(formatted)
	}
	return nil
}

func cmdExtract(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("extract: no package patterns", 1)
	}
	cfg := extract.DefaultConfig()
	cfg.IncludePrivate = c.Bool("private")

	out := os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return extract.Write(out, cfg, c.Args().Slice()...)
}
