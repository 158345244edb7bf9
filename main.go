package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/sheetops/xlsxfmt/internal/document"
	"github.com/sheetops/xlsxfmt/internal/engine"
	"github.com/sheetops/xlsxfmt/internal/scan"
	"github.com/sheetops/xlsxfmt/internal/template"
	"github.com/sheetops/xlsxfmt/internal/writer"
)

// Version information (set during build)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// parseLogLevel parses the LOG_LEVEL environment variable.
// Defaults to WarnLevel if not set or invalid.
func parseLogLevel() logrus.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(parseLogLevel())
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	app := &cli.App{
		Name:      "xlsxfmt",
		Usage:     "Template-driven Excel formatting tool",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		ArgsUsage: "INPUT",
		Description: "Scan Excel files to generate formatting templates, then apply them for\n" +
			"consistent output. All column keys in templates reference ORIGINAL header\n" +
			"names in the input file; renaming is applied as the last visual step.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "scan",
				Usage: "scan the file and print a report plus draft template JSON to stdout",
			},
			&cli.IntFlag{
				Name:  "header-row",
				Value: 1,
				Usage: "1-based header row number",
			},
			&cli.StringFlag{
				Name:    "template",
				Aliases: []string{"t"},
				Usage:   "template file to apply (JSON or YAML)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file path",
			},
			&cli.BoolFlag{
				Name:  "inplace",
				Usage: "overwrite the input file (a .bak backup is created first)",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c, logger)
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context, logger *logrus.Logger) error {
	input := c.Args().First()
	if input == "" {
		return fmt.Errorf("missing INPUT file argument")
	}
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("input file not found: %s", input)
	}

	if c.Bool("scan") {
		return runScan(input, c.Int("header-row"), logger)
	}

	templatePath := c.String("template")
	if templatePath == "" {
		return fmt.Errorf("provide --scan or -t/--template")
	}
	output := c.String("output")
	inplace := c.Bool("inplace")
	if output != "" && inplace {
		return fmt.Errorf("-o/--output and --inplace are mutually exclusive")
	}
	if output == "" && !inplace {
		output = writer.DefaultOutputPath(input)
	}

	tmpl, err := template.Load(templatePath)
	if err != nil {
		return err
	}
	// An explicit --header-row overrides the template.
	if hr := c.Int("header-row"); hr != 1 {
		tmpl.HeaderRow = hr
	}

	return runApply(input, output, inplace, tmpl, logger)
}

func runScan(input string, headerRow int, logger *logrus.Logger) error {
	doc, err := document.Open(input, logger)
	if err != nil {
		return err
	}
	defer doc.Close()

	report, err := scan.Scan(doc, headerRow, logger)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func runApply(input, output string, inplace bool, tmpl *template.Template, logger *logrus.Logger) error {
	w := writer.New(logger)

	// The backup must exist before any byte of the target can be replaced.
	if inplace {
		bak, err := w.Backup(input)
		if err != nil {
			return err
		}
		color.New(color.FgCyan).Fprintf(os.Stderr, "Backup: %s\n", bak)
	}

	doc, err := document.Open(input, logger)
	if err != nil {
		return err
	}
	defer doc.Close()

	result, err := engine.New(tmpl, logger).Run(doc)
	if err != nil {
		return err
	}

	dest := output
	if inplace {
		dest = input
		err = w.SaveInPlace(doc.Edit(), input)
	} else {
		err = w.SaveTo(doc.Edit(), output)
	}
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		color.New(color.FgYellow).Fprintf(os.Stderr, "Warning: %s\n", warning)
	}
	color.New(color.FgGreen).Fprintf(os.Stderr, "Done: %s\n", dest)
	return nil
}
