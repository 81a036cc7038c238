package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-finder/internal/config"
	"github.com/kozaktomas/face-finder/internal/normalize"
)

// normalizeInputExtensions lists the formats the batch normalizer accepts.
// Output is always JPEG.
var normalizeInputExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <input-dir> <output-dir>",
	Short: "Normalize a folder of images to a byte budget",
	Long: `Normalize every image in the input directory: fix orientation, bound
dimensions, and re-encode as JPEG within the configured byte budget.
Results are written to the output directory with a .jpg extension.`,
	Args: cobra.ExactArgs(2),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().Int("concurrency", 4, "Number of images to process in parallel")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	inputDir, outputDir := args[0], args[1]
	concurrency := mustGetInt(cmd, "concurrency")
	if concurrency < 1 {
		concurrency = 1
	}

	files, err := listNormalizeInputs(inputDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no image files found in %s", inputDir)
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	opts := normalize.Options{
		TargetBytes:    cfg.Normalize.TargetSizeKB * 1024,
		MaxDimension:   cfg.Normalize.MaxDimension,
		InitialQuality: cfg.Normalize.InitialQuality,
		QualityFloor:   cfg.Normalize.QualityFloor,
		QualityStep:    cfg.Normalize.QualityStep,
		MaxAttempts:    cfg.Normalize.MaxAttempts,
	}

	fmt.Printf("Processing %d images from %s\n", len(files), inputDir)
	fmt.Printf("Target: %dKB, max dimension %dpx, quality %d..%d\n",
		cfg.Normalize.TargetSizeKB, cfg.Normalize.MaxDimension,
		cfg.Normalize.InitialQuality, cfg.Normalize.QualityFloor)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Normalizing"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var originalBytes, finalBytes, okCount, failCount int64
	var failuresMu sync.Mutex
	var failures []string

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	startTime := time.Now()

	for _, name := range files {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := normalizeFile(inputDir, outputDir, name, opts)
			if err != nil {
				atomic.AddInt64(&failCount, 1)
				failuresMu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", name, err))
				failuresMu.Unlock()
			} else {
				atomic.AddInt64(&okCount, 1)
				atomic.AddInt64(&originalBytes, int64(result.OriginalBytes))
				atomic.AddInt64(&finalBytes, int64(result.FinalBytes))
			}

			bar.Add(1)
		}(name)
	}

	wg.Wait()
	fmt.Println()

	saved := originalBytes - finalBytes
	fmt.Printf("Processed %d images in %s (%d failed)\n",
		okCount, time.Since(startTime).Round(time.Second), failCount)
	if originalBytes > 0 {
		fmt.Printf("Total size: %s -> %s (saved %s, %.1f%%)\n",
			formatSize(originalBytes), formatSize(finalBytes),
			formatSize(saved), float64(saved)/float64(originalBytes)*100)
	}
	for _, f := range failures {
		fmt.Printf("  failed: %s\n", f)
	}

	if okCount == 0 {
		return fmt.Errorf("all %d images failed to normalize", failCount)
	}
	return nil
}

// listNormalizeInputs returns the image file names in dir, sorted.
func listNormalizeInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if normalizeInputExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// normalizeFile runs one image through the normalizer and writes the JPEG
// output next to its peers in outputDir.
func normalizeFile(inputDir, outputDir, name string, opts normalize.Options) (*normalize.Result, error) {
	data, err := os.ReadFile(filepath.Join(inputDir, name)) //nolint:gosec // name comes from ReadDir
	if err != nil {
		return nil, err
	}

	result, err := normalize.Normalize(data, opts)
	if err != nil {
		return nil, err
	}

	outName := strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
	if err := os.WriteFile(filepath.Join(outputDir, outName), result.Data, 0o640); err != nil { //nolint:gosec
		return nil, err
	}
	return result, nil
}

// formatSize formats a byte count in human-readable form.
func formatSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%dB", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1fKB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1fMB", float64(size)/(1024*1024))
	}
}
