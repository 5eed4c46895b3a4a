package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/stat"

	"neqrscramble/internal/models"
	"neqrscramble/pkg/baker"
	"neqrscramble/pkg/config"
	"neqrscramble/pkg/gate"
	"neqrscramble/pkg/neqr"
	"neqrscramble/pkg/statevector"
	"neqrscramble/pkg/visualization"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "neqrscramble.yaml", "Path to the YAML configuration file")
	initConfig := flag.Bool("init-config", false, "Write the default configuration to -config and exit")
	xDim := flag.Int("x", 0, "Image width in pixels (power of two)")
	yDim := flag.Int("y", 0, "Image height in pixels (power of two)")
	depth := flag.Int("depth", 0, "Pixel depth in bits")
	pattern := flag.String("pattern", "", "Synthetic image pattern: checker, gradient, diagonal, ramp")
	shots := flag.Int("shots", 0, "Number of measurement shots")
	seed := flag.Uint64("seed", 0, "Seed for the measurement random source")
	numCores := flag.Int("cores", 0, "Number of CPU cores to use (default: all available)")
	scramble := flag.Bool("scramble", true, "Apply the baker map between encoding and decoding")
	outDir := flag.String("out", "", "Directory to save stage images (empty disables saving)")
	format := flag.String("format", "", "Stage image format: png or bmp")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "neqrscramble",
	})

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			logger.Fatal("Failed to write default config", "err", err)
		}
		logger.Info("Default config written", "path", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", "err", err)
	}

	// Flags given on the command line override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "x":
			cfg.Image.XDim = *xDim
		case "y":
			cfg.Image.YDim = *yDim
		case "depth":
			cfg.Image.PixelDepth = *depth
		case "pattern":
			cfg.Image.Pattern = *pattern
		case "shots":
			cfg.Decode.Shots = *shots
		case "seed":
			cfg.Decode.Seed = *seed
		case "cores":
			cfg.Processing.NumCores = *numCores
		case "scramble":
			cfg.Output.Scramble = *scramble
		case "out":
			cfg.Output.Dir = *outDir
		case "format":
			cfg.Output.Format = *format
		case "verbose":
			cfg.Output.Verbose = *verbose
		}
	})

	if cfg.Output.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "err", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Run failed", "err", err)
	}
}

// run encodes the configured test image, optionally scrambles and
// unscrambles it with the baker map, and decodes each stage.
func run(cfg *config.Config, logger *log.Logger) error {
	depth := cfg.Image.PixelDepth
	xDim, yDim := cfg.Image.XDim, cfg.Image.YDim
	workers := cfg.Processing.NumCores

	img, err := models.NewPattern(cfg.Image.Pattern, xDim, yDim, depth)
	if err != nil {
		return err
	}
	logger.Info("Image generated", "pattern", cfg.Image.Pattern, "x", xDim, "y", yDim, "depth", depth)
	logger.Debug("Original image\n" + visualization.Render(img))

	startTime := time.Now()
	state, err := neqr.Encoder{Workers: workers}.Encode(img, depth)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	logger.Info("Encoded", "states", len(state), "nonzero", statevector.Nonzero(state),
		"elapsed", time.Since(startTime))

	decoder := neqr.Decoder{Workers: workers, Seed: cfg.Decode.Seed}
	stages := map[string]models.Image{"01_original": img}

	measured := state
	if cfg.Output.Scramble {
		startTime = time.Now()
		g, err := baker.Composer{Builder: gate.SwapBuilder{Workers: workers}}.Build(xDim, yDim, depth)
		if err != nil {
			return fmt.Errorf("baker map: %w", err)
		}
		steps, err := baker.Steps(xDim, yDim, depth)
		if err != nil {
			return fmt.Errorf("baker map steps: %w", err)
		}
		logger.Info("Baker map built", "gate", fmt.Sprintf("%dx%d", g.Len(), g.Len()),
			"steps", len(steps), "elapsed", time.Since(startTime))
		logger.Debug("Baker map steps", "sequence", fmt.Sprint(steps))

		scrambled, err := baker.Scramble(g, state)
		if err != nil {
			return err
		}
		scrambledImg, err := decoder.Decode(scrambled, depth, xDim, yDim, cfg.Decode.Shots)
		if err != nil {
			return fmt.Errorf("decode scrambled: %w", err)
		}
		stages["02_scrambled"] = scrambledImg.Transpose()
		logger.Debug("Scrambled image\n" + visualization.Render(scrambledImg.Transpose()))

		if measured, err = baker.Unscramble(g, scrambled); err != nil {
			return err
		}
	}

	startTime = time.Now()
	decoded, err := decoder.Decode(measured, depth, xDim, yDim, cfg.Decode.Shots)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	// The decoder indexes [x][y]; flip back to [y][x] for comparison
	restored := decoded.Transpose()
	stages["03_decoded"] = restored
	logger.Info("Decoded", "shots", cfg.Decode.Shots, "elapsed", time.Since(startTime))
	logger.Debug("Decoded image\n" + visualization.Render(restored))

	matches := make([]float64, 0, xDim*yDim)
	for y := 0; y < yDim; y++ {
		for x := 0; x < xDim; x++ {
			if restored[y][x] == img[y][x] {
				matches = append(matches, 1)
			} else {
				matches = append(matches, 0)
			}
		}
	}
	logger.Info("Reconstruction", "accuracy", fmt.Sprintf("%.2f%%", 100*stat.Mean(matches, nil)))

	if cfg.Output.Dir != "" {
		for name, stage := range stages {
			path := filepath.Join(cfg.Output.Dir, name+"."+cfg.Output.Format)
			if err := visualization.SaveImage(stage, depth, path); err != nil {
				logger.Warn("Failed to save stage image", "stage", name, "err", err)
				continue
			}
			logger.Debug("Stage image saved", "path", path)
		}
		logger.Info("Stage images saved", "dir", cfg.Output.Dir)
	}

	return nil
}
