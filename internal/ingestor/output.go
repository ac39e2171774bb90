package ingestor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alevsk/shapeshift/internal/codec"
)

// Extension returns the file extension for a document serialized as f.
// OpenAPI output is YAML when pretty and JSON otherwise.
func Extension(f codec.Format, pretty bool) string {
	switch f {
	case codec.FormatOpenAPI:
		if pretty {
			return ".yaml"
		}
		return ".json"
	default:
		return "." + string(f)
	}
}

// OutputPath maps a document collected from root into outDir, keeping its
// relative location and replacing its extension. Files reached through
// symlinks outside root land at the top of outDir.
func OutputPath(root, path, outDir, ext string) string {
	rel := filepath.Base(path)
	if info, err := os.Stat(root); err == nil && info.IsDir() {
		if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ext
	return filepath.Join(outDir, rel)
}

// Write stores content at path, creating parent directories
func Write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
