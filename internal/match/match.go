// Package match provides match file handling and persistence.
//
// A match file is the exchange format between an external feature matcher
// and the stitching pipeline: a versioned JSON document listing point
// correspondences between a source and a destination image.
package match

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"pano-stitcher/internal/homography"
)

// CurrentVersion is the match file schema version this build writes.
const CurrentVersion = 1

// File represents a correspondence match file (.pano.json).
type File struct {
	Version  int       `json:"version"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Image paths (relative to the match file)
	SourceImagePath      string `json:"source_image,omitempty"`
	DestinationImagePath string `json:"destination_image,omitempty"`

	// Matcher provenance, free-form (e.g. "SIFT+FLANN")
	Matcher string `json:"matcher,omitempty"`

	Correspondences []homography.Correspondence `json:"correspondences"`
}

// New creates an empty match file.
func New() *File {
	now := time.Now()
	return &File{
		Version:  CurrentVersion,
		Created:  now,
		Modified: now,
	}
}

// Load reads and validates a match file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read match file: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse match file: %w", err)
	}
	if f.Version > CurrentVersion {
		return nil, fmt.Errorf("match file version %d newer than supported %d", f.Version, CurrentVersion)
	}
	return &f, nil
}

// Save writes the match file to disk, updating the modification time.
func (f *File) Save(path string) error {
	f.Modified = time.Now()
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode match file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write match file: %w", err)
	}
	return nil
}
