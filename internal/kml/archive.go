package kml

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

// ReadTrackDocument opens a KMZ archive and returns the raw bytes of the
// first entry whose name ends in ".kml" (case-insensitive), along with the
// entry name. A KMZ is a plain zip bundle; anything beside the markup
// document (icons, overlays) is ignored.
func ReadTrackDocument(path string) ([]byte, string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("open kmz archive %s: %w", path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".kml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, "", fmt.Errorf("open %s inside archive: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("read %s from archive: %w", f.Name, err)
		}
		return data, f.Name, nil
	}

	return nil, "", fmt.Errorf("no .kml entry found in %s", path)
}
