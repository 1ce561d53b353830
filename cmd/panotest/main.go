// Command panotest runs the stitching pipeline on two images plus a match
// file and writes the composited panorama.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"pano-stitcher/internal/homography"
	"pano-stitcher/internal/match"
	"pano-stitcher/internal/panorama"
	"pano-stitcher/internal/version"
	"pano-stitcher/pkg/geometry"

	_ "golang.org/x/image/tiff"
)

func main() {
	srcPath := flag.String("src", "", "Path to source image (the one that gets warped)")
	dstPath := flag.String("dst", "", "Path to destination image (kept unwarped)")
	matchPath := flag.String("matches", "", "Path to correspondence match file (.pano.json)")
	outPath := flag.String("o", "panorama.png", "Output panorama path (PNG)")
	thresh := flag.Float64("thresh", 0, "Inlier distance threshold in pixels (0 = default)")
	iters := flag.Int("iters", 0, "RANSAC iteration budget (0 = default)")
	seed := flag.Int64("seed", 0, "Random seed (0 = default)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("panotest %s (built %s, commit %s)\n", version.Version, version.BuildTime, version.GitCommit)
		return
	}
	if *srcPath == "" || *dstPath == "" || *matchPath == "" {
		fmt.Println("Usage: panotest -src <image> -dst <image> -matches <file> [-o out.png]")
		os.Exit(1)
	}

	fmt.Printf("=== Loading source: %s ===\n", *srcPath)
	src, err := loadImage(*srcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load source: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Loading destination: %s ===\n", *dstPath)
	dst, err := loadImage(*dstPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load destination: %v\n", err)
		os.Exit(1)
	}

	mf, err := match.Load(*matchPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load matches: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d correspondences (matcher=%q)\n", len(mf.Correspondences), mf.Matcher)

	cfg := homography.DefaultConfig()
	if *thresh > 0 {
		cfg.DistanceThreshold = *thresh
	}
	if *iters > 0 {
		cfg.NumIterations = *iters
	}
	if *seed != 0 {
		cfg.RandomSeed = *seed
	}

	fmt.Printf("\n=== Stitching (threshold=%.1f px, %d iterations, seed=%d) ===\n",
		cfg.DistanceThreshold, cfg.NumIterations, cfg.RandomSeed)
	result, err := panorama.Compose(src, dst, mf.Correspondences, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Stitching failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Homography computed with %d/%d inliers\n",
		result.InlierCount(), len(mf.Correspondences))
	printResiduals(result.Homography, mf.Correspondences, result.Inliers)

	out, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := png.Encode(out, result.Panorama); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode panorama: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %dx%d panorama to %s\n",
		result.Canvas.Width, result.Canvas.Height, *outPath)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func printResiduals(h geometry.Homography, corrs []homography.Correspondence, inliers []bool) {
	errs := homography.ReprojectionErrors(h, corrs)
	fmt.Printf("\nPer-point residuals (* = inlier):\n")
	var sum, max float64
	var n int
	for i, c := range corrs {
		marker := " "
		if inliers[i] {
			marker = "*"
			sum += errs[i]
			if errs[i] > max {
				max = errs[i]
			}
			n++
		}
		fmt.Printf("  %s src=(%6.1f,%6.1f) dst=(%6.1f,%6.1f)  err=%.2f px\n",
			marker, c.Src.X, c.Src.Y, c.Dst.X, c.Dst.Y, errs[i])
	}
	if n > 0 {
		fmt.Printf("Inlier residuals: avg=%.2f max=%.2f px (%d points)\n", sum/float64(n), max, n)
	}
}
