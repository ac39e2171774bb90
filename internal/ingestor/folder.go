package ingestor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alevsk/shapeshift/internal/codec"
	"github.com/bmatcuk/doublestar/v4"
)

// extensions maps file extensions to the format they usually hold. OpenAPI
// documents share the json and yaml extensions and are left to the caller.
var extensions = map[string]codec.Format{
	".json": codec.FormatJSON,
	".yaml": codec.FormatYAML,
	".yml":  codec.FormatYAML,
	".toml": codec.FormatTOML,
	".xml":  codec.FormatXML,
}

// FormatForPath returns the format suggested by a file extension, or ""
// when the extension is not recognised
func FormatForPath(path string) codec.Format {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// readFile loads a single regular file
func readFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: not a regular file: %s", ErrInvalidSource, path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return &Document{
		Path:    path,
		Format:  FormatForPath(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Content: string(content),
	}, nil
}

// walkFolder collects every file with a recognised extension under root,
// sorted by path
func (i *Ingestor) walkFolder(ctx context.Context, root string) ([]*Document, error) {
	var docs []*Document
	// visited symlinks, to prevent cycles
	visited := make(map[string]bool)

	collect := func(path string) error {
		if FormatForPath(path) == "" || !i.selected(root, path) {
			return nil
		}
		doc, err := readFile(path)
		if err != nil {
			return fmt.Errorf("error processing %s: %w", path, err)
		}
		docs = append(docs, doc)
		return nil
	}

	var walk fs.WalkDirFunc
	walk = func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.Type()&os.ModeSymlink != 0 {
			if !i.opts.FollowSymlinks {
				return nil
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("failed to get absolute path for %s: %w", path, err)
			}
			if visited[abs] {
				return nil
			}
			visited[abs] = true

			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				return fmt.Errorf("failed to evaluate symlink %s: %w", path, err)
			}
			info, err := os.Stat(target)
			if err != nil {
				return fmt.Errorf("failed to stat symlink target %s: %w", target, err)
			}
			if info.IsDir() {
				return filepath.WalkDir(target, walk)
			}
			return collect(target)
		}

		if d.IsDir() {
			return nil
		}
		return collect(path)
	}

	if err := filepath.WalkDir(root, walk); err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no supported files found in %s", ErrNoDocuments, root)
	}

	sort.Slice(docs, func(a, b int) bool { return docs[a].Path < docs[b].Path })
	return docs, nil
}

// selected applies the include and exclude globs to a walked file. Globs
// match the slash separated path relative to root, or the base name.
func (i *Ingestor) selected(root, path string) bool {
	rel := filepath.Base(path)
	if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
		rel = filepath.ToSlash(r)
	}
	if len(i.opts.Include) > 0 && !matchAnyGlob(rel, i.opts.Include) {
		return false
	}
	return !matchAnyGlob(rel, i.opts.Exclude)
}

func matchAnyGlob(rel string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, path.Base(rel)); ok {
			return true
		}
	}
	return false
}
