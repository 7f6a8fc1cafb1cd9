package imagetool

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

func init() {
	// Register Nikon and Canon maker notes
	exif.RegisterParsers(mknote.All...)
}

// PhotoMetadata describes an uploaded reference photo. The image tools feed
// this into the prompt so the model knows what it is looking at.
type PhotoMetadata struct {
	CameraModel string
	TakenAt     *time.Time
	Latitude    *float64
	Longitude   *float64
}

// ExtractMetadata reads EXIF data from an uploaded photo. Photos without
// EXIF data return an empty result, not an error.
func ExtractMetadata(filePath string) (*PhotoMetadata, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening image file: %w", err)
	}
	defer f.Close()

	meta := &PhotoMetadata{}

	x, err := exif.Decode(f)
	if err != nil {
		log.Info(fmt.Sprintf("No EXIF data found in %s: %v", filePath, err))
		return meta, nil
	}

	if m, err := x.Get(exif.Model); err == nil {
		meta.CameraModel = strings.TrimSpace(strings.Trim(m.String(), `"`))
	}
	if dt, err := x.DateTime(); err == nil {
		meta.TakenAt = &dt
	}
	if lat, long, err := x.LatLong(); err == nil {
		meta.Latitude = &lat
		meta.Longitude = &long
	}

	return meta, nil
}

// Describe renders the metadata as a short prompt fragment.
func (m *PhotoMetadata) Describe() string {
	var parts []string
	if m.CameraModel != "" {
		parts = append(parts, "shot on "+m.CameraModel)
	}
	if m.TakenAt != nil {
		parts = append(parts, "taken "+m.TakenAt.Format("2006-01-02"))
	}
	if m.Latitude != nil && m.Longitude != nil {
		parts = append(parts, fmt.Sprintf("at %.4f,%.4f", *m.Latitude, *m.Longitude))
	}
	return strings.Join(parts, ", ")
}
