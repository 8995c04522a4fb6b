package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	Scene   string
	Width   int // 0 keeps the scene's width
	Samples int // 0 keeps the scene's samples per pixel
	Depth   int // -1 keeps the scene's max depth
	Passes  int
	Workers int
	Seed    int64
	Out     string // empty uses output/<scene>/render_<timestamp>.png
	Caption string
	Help    bool
}

var errHelp = errors.New("help requested")

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.Scene, "scene", "weekend", "Scene name ("+strings.Join(scene.Names(), ", ")+") or path to a .json scene file")
	fs.IntVar(&opts.Width, "width", 0, "Image width in pixels (0 = scene default); height follows the camera aspect ratio")
	fs.IntVar(&opts.Samples, "samples", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&opts.Depth, "depth", -1, "Maximum bounce depth (-1 = scene default)")
	fs.IntVar(&opts.Passes, "passes", 1, "Progressive passes; each pass is saved when greater than 1")
	fs.IntVar(&opts.Workers, "workers", 0, "Number of parallel workers (0 = logical CPU count)")
	fs.Int64Var(&opts.Seed, "seed", 0, "Random seed for scene layout and sampling")
	fs.StringVar(&opts.Out, "out", "", "Output PNG path (default output/<scene>/render_<timestamp>.png)")
	fs.StringVar(&opts.Caption, "caption", "", "Text drawn in the bottom-left corner of the image")
	fs.BoolVar(&opts.Help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.Help {
		fmt.Fprintln(output, "Weekend Raytracer")
		fmt.Fprintln(output, "Usage: raytracer [options]")
		fmt.Fprintln(output)
		fmt.Fprintln(output, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(output)
		fmt.Fprintln(output, "Output will be saved to output/<scene>/render_<timestamp>.png")
		return opts, errHelp
	}

	switch {
	case opts.Width < 0:
		return opts, fmt.Errorf("invalid -width %d", opts.Width)
	case opts.Samples < 0:
		return opts, fmt.Errorf("invalid -samples %d", opts.Samples)
	case opts.Passes < 1:
		return opts, fmt.Errorf("invalid -passes %d", opts.Passes)
	case opts.Workers < 0:
		return opts, fmt.Errorf("invalid -workers %d", opts.Workers)
	}
	return opts, nil
}

// createScene builds the requested scene and applies the command line overrides
func createScene(opts options) (*scene.Scene, error) {
	s, err := scene.Create(opts.Scene, opts.Seed)
	if err != nil {
		return nil, err
	}
	if opts.Width > 0 {
		s.SetWidth(opts.Width)
	}
	if opts.Samples > 0 {
		s.SamplingConfig.SamplesPerPixel = opts.Samples
	}
	if opts.Depth >= 0 {
		s.SamplingConfig.MaxDepth = opts.Depth
	}
	return s, nil
}

// sceneLabel turns a scene name or file path into a directory-safe label
func sceneLabel(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func outputPath(opts options, now time.Time) string {
	if opts.Out != "" {
		return opts.Out
	}
	timestamp := now.Format("20060102_150405")
	return filepath.Join("output", sceneLabel(opts.Scene), fmt.Sprintf("render_%s.png", timestamp))
}

// passPath inserts the pass number before the extension of path
func passPath(path string, pass int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_pass%d%s", strings.TrimSuffix(path, ext), pass, ext)
}

// run renders the scene described by opts and returns the path of the final image
func run(ctx context.Context, opts options, logger core.Logger) (string, error) {
	s, err := createScene(opts)
	if err != nil {
		return "", err
	}

	config := s.RenderConfig()
	config.NumWorkers = opts.Workers
	config.Seed = opts.Seed

	filename := outputPath(opts, time.Now())
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	logger.Printf("Scene %s: %d spheres, %dx%d, %d samples/pixel, depth %d\n",
		opts.Scene, s.Len(), config.Width, config.Height, config.SamplesPerPixel, config.MaxDepth)

	startTime := time.Now()

	if opts.Passes == 1 {
		fb, stats, err := renderer.RenderWith(ctx, s.World, s.Camera, s.Integrator(), config, logger)
		if err != nil {
			return "", err
		}
		logger.Printf("Samples per pixel: %.1f (range %d - %d)\n",
			stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed)
		if err := renderer.SavePNG(filename, fb, opts.Caption); err != nil {
			return "", err
		}
	} else {
		if err := runProgressive(ctx, s, config, opts, filename, logger); err != nil {
			return "", err
		}
	}

	logger.Printf("Render completed in %v\n", time.Since(startTime))
	return filename, nil
}

func runProgressive(ctx context.Context, s *scene.Scene, config renderer.Config, opts options, filename string, logger core.Logger) error {
	pr, err := renderer.NewProgressiveRaytracer(s.World, s.Camera, s.Integrator(),
		config.Width, config.Height, config.Progressive(opts.Passes), logger)
	if err != nil {
		return err
	}

	passChan, errChan := pr.RenderProgressive(ctx)
	for result := range passChan {
		path := passPath(filename, result.PassNumber)
		if result.IsLast {
			path = filename
		}
		if err := renderer.SavePNG(path, result.Frame, opts.Caption); err != nil {
			return err
		}
		logger.Printf("Pass %d saved as %s\n", result.PassNumber, path)
	}
	return <-errChan
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, errHelp) || errors.Is(err, flag.ErrHelp) {
		return
	}
	logger := renderer.NewDefaultLogger()
	if err != nil {
		logger.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	logger.Printf("Starting Weekend Raytracer...\n")
	if info, err := renderer.GetHostInfo(); err == nil {
		logger.Printf("Host: %s\n", info)
	} else {
		logger.Printf("Host info unavailable: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	filename, err := run(ctx, opts, logger)
	if err != nil {
		logger.Printf("Error: %v\n", err)
		stop()
		os.Exit(1)
	}
	logger.Printf("Render saved as %s\n", filename)
}
