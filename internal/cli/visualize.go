package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantfold/fundflow/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering a plan's
// allocation as a diagram.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "visualize [plan.toml]",
		Short: "Render a plan's allocation as a diagram",
		Long: `Render a plan's allocation as a diagram.

The visualize command solves the plan and draws its priority tree as a
node-link diagram: interior nodes show how money splits, leaves show the
accounts and the amounts they received. Output is Graphviz DOT or SVG.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.PlanPath = args[0]
			opts.Formats = parseFormats(formatsStr, pipeline.FormatSVG)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Render flags
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "annotate edges with weights and order")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json (comma-separated)")

	return cmd
}

// runVisualize solves the plan and writes the rendered artifacts.
func (c *CLI) runVisualize(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering allocation...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := writeArtifacts(result.Artifacts, opts.Formats, opts.PlanPath, output); err != nil {
		return err
	}

	printStats(len(result.Report.Accounts), result.Report.Delivered, result.CacheInfo.RenderHit)
	return nil
}

// writeArtifacts writes each rendered format to its own file. With a single
// format the output path is used as-is; with several, the format becomes the
// extension on a shared base path.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) error {
	if len(formats) == 1 {
		path := output
		if path == "" {
			path = basePath("", input) + "." + formats[0]
		}
		return writeArtifact(artifacts[formats[0]], path)
	}

	base := basePath(output, input)
	for _, format := range formats {
		if err := writeArtifact(artifacts[format], base+"."+format); err != nil {
			return err
		}
	}
	return nil
}

func writeArtifact(data []byte, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .dot, .json), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
