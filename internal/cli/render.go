package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartgen/pkg/output"
	"github.com/matzehuels/chartgen/pkg/pipeline"
)

// renderFlags holds the raw flag values of the render command.
type renderFlags struct {
	input  string
	output string
	format string
	width  string
	height string
	buffer bool
}

// renderCommand creates the root command, which renders one chart.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "chartgen [input_file] [output_file]",
		Short: "chartgen renders chart descriptions to images",
		Long: `chartgen renders an ECharts option (a JSON object) to SVG or a raster image.

The option is read from --input, the first positional argument, or stdin,
and may be inline JSON or the path of a JSON file. Without an output the SVG
is printed to stdout. The format follows --format, then the output file
extension, then defaults to svg.`,
		Example: `  chartgen option.json chart.png
  cat option.json | chartgen chart.webp
  chartgen -i option.json -o s3://charts/daily.png -w 1280px -h 720px
  chartgen -i option.json -f png --buffer`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.input, "input", "i", "", "chart option: JSON text or a file path")
	f.StringVarP(&flags.output, "output", "o", "", "output file or s3://bucket/key (default stdout)")
	f.StringVarP(&flags.format, "format", "f", "", "output format: svg or a raster format (default from output extension)")
	f.StringVarP(&flags.width, "width", "w", fmt.Sprint(pipeline.DefaultWidth), "chart width in pixels, units are ignored")
	f.StringVarP(&flags.height, "height", "h", fmt.Sprint(pipeline.DefaultHeight), "chart height in pixels, units are ignored")
	f.BoolVarP(&flags.buffer, "buffer", "b", false, "print the output bytes as a JSON array")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, flags renderFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger.Diagnostics())

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	raw := pipeline.RawOptions{
		Input:         flags.input,
		Output:        flags.output,
		Format:        flags.format,
		Width:         flags.width,
		Height:        flags.height,
		Buffer:        flags.buffer,
		DefaultFormat: cfg.Format,
		Args:          args,
	}
	if !cmd.Flags().Changed("width") && cfg.Width != "" {
		raw.Width = cfg.Width
	}
	if !cmd.Flags().Changed("height") && cfg.Height != "" {
		raw.Height = cfg.Height
	}
	if raw.Input == "" && c.In != nil && !c.IsTerminal(c.In) {
		data, err := io.ReadAll(c.In)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		raw.Stdin = string(data)
	}

	req, err := pipeline.Resolve(raw)
	if err != nil {
		return err
	}
	logger.Debug("resolved request",
		"format", req.Format,
		"output", req.Output,
		"width", req.Width,
		"height", req.Height,
		"buffer", req.Buffer)

	runner, err := c.newRunner(ctx, cfg, nil, output.IsS3(req.Output))
	if err != nil {
		return err
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, req, c.Out)
	if err != nil {
		return err
	}

	switch result.Status {
	case pipeline.StatusSaved:
		logger.Info("The chart has been saved to " + result.Output)
	case pipeline.StatusUnsupported:
		logger.Error("Unsupported format: " + req.Format)
	}
	prog.done(fmt.Sprintf("%s chart %s", result.Format, result.Status))
	return nil
}
