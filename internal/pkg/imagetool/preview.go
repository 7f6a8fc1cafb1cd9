package imagetool

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

const (
	SmallPreviewSize  = 200
	MediumPreviewSize = 500

	webpQuality = 85
)

// PreviewResult lists the preview files written for one generated image.
type PreviewResult struct {
	SmallPath  string
	MediumPath string
}

// GeneratePreviews renders small and medium WebP previews for a generated
// image so the gallery and the dashboard never serve the full-size original.
func GeneratePreviews(sourcePath, destDir string) (*PreviewResult, error) {
	img, err := imaging.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("error opening image %s: %w", sourcePath, err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating preview directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	result := &PreviewResult{}

	small := imaging.Resize(img, SmallPreviewSize, 0, imaging.Lanczos)
	result.SmallPath = filepath.Join(destDir, base+"_small.webp")
	if err := saveWebP(small, result.SmallPath); err != nil {
		return nil, err
	}

	medium := imaging.Resize(img, MediumPreviewSize, 0, imaging.Lanczos)
	result.MediumPath = filepath.Join(destDir, base+"_medium.webp")
	if err := saveWebP(medium, result.MediumPath); err != nil {
		return nil, err
	}

	log.Debugf("[ImageTool] Generated previews for %s", filepath.Base(sourcePath))
	return result, nil
}

func saveWebP(img image.Image, destPath string) error {
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, webpQuality)
	if err != nil {
		return fmt.Errorf("error creating webp encoder options: %w", err)
	}

	output, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", destPath, err)
	}
	defer output.Close()

	if err := webp.Encode(output, img, options); err != nil {
		return fmt.Errorf("error encoding %s: %w", destPath, err)
	}
	return nil
}
