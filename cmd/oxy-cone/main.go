// oxy-cone requests a triangulated cone from the triangulation service and shows it spinning.
//
// Further cones can be requested while it runs by writing "height radius segments" lines to stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/Carmen-Shannon/oxy-cone/config"
	"github.com/Carmen-Shannon/oxy-cone/engine"
	"github.com/Carmen-Shannon/oxy-cone/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cone/engine/renderer"
	_ "github.com/Carmen-Shannon/oxy-cone/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-cone/engine/triangulation"
	"github.com/Carmen-Shannon/oxy-cone/engine/window"
	"github.com/Carmen-Shannon/oxy-cone/engine/window/glfw_platform"
	"golang.org/x/sync/errgroup"
)

type options struct {
	configPath string
	frames     uint64
	snapshot   string
	export     string
	verbose    bool
}

func main() {
	cfg, opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	level, _ := config.LevelFromString(cfg.LogLevel)
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(cfg, opts, logger); err != nil {
		logger.Error("oxy-cone failed", "error", err)
		os.Exit(1)
	}
}

// parseFlags loads the config file, if any, then applies the flags that were set explicitly.
func parseFlags(args []string) (config.Config, options, error) {
	fs := flag.NewFlagSet("oxy-cone", flag.ContinueOnError)
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	service := fs.String("service", triangulation.DefaultBaseURL, "Triangulation service base URL")
	height := fs.Float64("height", 10, "Cone height")
	radius := fs.Float64("radius", 5, "Cone radius")
	segments := fs.Int("segments", 12, "Number of segments")
	headless := fs.Bool("headless", false, "Render off-screen with the software renderer")
	backend := fs.String("backend", "", "Renderer backend: wgpu or software")
	fs.Uint64Var(&opts.frames, "frames", 0, "Exit after this many frames once the first result arrives (0 = run until interrupted)")
	fs.StringVar(&opts.snapshot, "snapshot", "", "Write the last frame to this PNG file on exit")
	fs.StringVar(&opts.export, "export", "", "Write the displayed geometry to this STL file on exit")
	fs.BoolVar(&opts.verbose, "v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, opts, err
	}

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, opts, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "service":
			cfg.Service.URL = *service
		case "height":
			cfg.Cone.Height = *height
		case "radius":
			cfg.Cone.Radius = *radius
		case "segments":
			cfg.Cone.Segments = *segments
		case "headless":
			cfg.Window.Headless = *headless
		case "backend":
			cfg.Render.Backend = *backend
		}
	})
	if cfg.Window.Headless {
		cfg.Render.Backend = renderer.BackendTypeSoftware.String()
	}
	return cfg, opts, cfg.Validate()
}

func run(cfg config.Config, opts options, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host, err := openWindow(cfg, logger)
	if err != nil {
		return err
	}
	defer host.Close()

	hosts, err := window.NewRegistry(host)
	if err != nil {
		return err
	}

	client, err := triangulation.NewClient(cfg.Service.URL,
		triangulation.WithPath(cfg.Service.Path),
		triangulation.WithTimeout(cfg.Service.Timeout),
		triangulation.WithRateLimit(cfg.Service.RateLimit, cfg.Service.Burst),
		triangulation.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	color, _ := cfg.ColorHex()
	sequencing, _ := cfg.SequencingMode()
	backendType, _ := renderer.ParseBackendType(cfg.Render.Backend)

	// Frames are counted once the first result is in, so bounded runs always show a result.
	var firstResult atomic.Bool
	var startFrame atomic.Uint64

	var v engine.Viewer
	v = engine.NewViewer(hosts, client,
		engine.WithParams(cfg.Params()),
		engine.WithWorkers(cfg.Workers),
		engine.WithColor(color),
		engine.WithSequencing(sequencing),
		engine.WithCameraDistance(cfg.Render.CameraDistance),
		engine.WithRotationStep(cfg.Render.RotationStep),
		engine.WithProfiling(cfg.Render.Profile),
		engine.WithRendererFactory(rendererFactory(backendType, cfg.Render, logger)),
		engine.WithLogger(logger),
		engine.WithResultCallback(func(engine.Result) {
			if !firstResult.CompareAndSwap(false, true) {
				return
			}
			if sc := v.Manager().Context(); sc != nil {
				startFrame.Store(sc.Renderer.Frames())
			}
		}),
	)

	if err := v.Mount(cfg.Window.ID); err != nil {
		return err
	}
	defer v.Unmount()

	if _, err := v.Submit(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.frames > 0 {
		host.SetUpdateCallback(func() {
			sc := v.Manager().Context()
			if firstResult.Load() && sc != nil && sc.Renderer.Frames()-startFrame.Load() >= opts.frames {
				cancel()
			}
		})
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return readForm(gctx, os.Stdin, v, logger)
	})

	// GLFW requires events to be pumped from the goroutine that created the window.
	runErr := host.Run(runCtx)
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	return finish(v, opts, logger)
}

func openWindow(cfg config.Config, logger *slog.Logger) (window.Window, error) {
	options := []window.WindowBuilderOption{
		window.WithID(cfg.Window.ID),
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithFrameRate(cfg.Window.FrameRate),
		window.WithLogger(logger),
	}
	if !cfg.Window.Headless {
		options = append(options, window.WithPlatform(glfw_platform.New()))
	}
	return window.NewWindow(options...)
}

// rendererFactory builds the configured backend, falling back to software when the GPU
// backend cannot start.
func rendererFactory(backendType renderer.RendererBackendType, rc config.Render, logger *slog.Logger) func(window.Window) (renderer.Renderer, error) {
	presentMode := renderer.PresentModeVSync
	if !rc.VSync {
		presentMode = renderer.PresentModeUncapped
	}
	msaa := renderer.MSAAOff
	if rc.MSAA {
		msaa = renderer.MSAA4x
	}
	options := []renderer.RendererBuilderOption{
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(msaa),
		renderer.WithSupersample(rc.Supersample),
		renderer.WithLogger(logger),
	}

	return func(host window.Window) (renderer.Renderer, error) {
		r, err := renderer.NewRenderer(backendType, host, options...)
		if err == nil || backendType == renderer.BackendTypeSoftware {
			return r, err
		}
		logger.Warn("falling back to software renderer", "backend", backendType, "error", err)
		return renderer.NewRenderer(renderer.BackendTypeSoftware, host, options...)
	}
}

// readForm submits a request for every "height radius segments" line read from r.
func readForm(ctx context.Context, r io.Reader, v engine.Viewer, logger *slog.Logger) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			p, err := parseForm(line)
			if err != nil {
				logger.Warn("ignoring form input", "line", line, "error", err)
				continue
			}
			v.SetParams(p)
			if _, err := v.Submit(); err != nil {
				return err
			}
		}
	}
}

// parseForm reads "height radius segments". Values are not range-checked.
func parseForm(line string) (triangulation.Params, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return triangulation.Params{}, fmt.Errorf("want 3 values, got %d", len(fields))
	}
	height, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return triangulation.Params{}, fmt.Errorf("height: %w", err)
	}
	radius, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return triangulation.Params{}, fmt.Errorf("radius: %w", err)
	}
	segments, err := strconv.Atoi(fields[2])
	if err != nil {
		return triangulation.Params{}, fmt.Errorf("segments: %w", err)
	}
	return triangulation.Params{Height: height, Radius: radius, Segments: segments}, nil
}

// finish writes the requested snapshot and export while the scene is still mounted.
func finish(v engine.Viewer, opts options, logger *slog.Logger) error {
	var errs []error
	if opts.snapshot != "" {
		if sc := v.Manager().Context(); sc != nil {
			img, err := sc.Renderer.Snapshot()
			if err == nil {
				err = renderer.SavePNG(opts.snapshot, img)
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("snapshot: %w", err))
			} else {
				logger.Info("snapshot written", "path", opts.snapshot)
			}
		}
	}
	if opts.export != "" {
		if err := geometry.WriteSTL(opts.export, v.Geometry()); err != nil {
			errs = append(errs, fmt.Errorf("export: %w", err))
		} else {
			logger.Info("geometry exported", "path", opts.export)
		}
	}
	return errors.Join(errs...)
}
