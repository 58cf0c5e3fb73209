// Package branchwalk provides the embedded default content (decision tree and
// result articles) and an overlay filesystem that checks local disk first,
// falling back to embedded.
package branchwalk

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

// Default content file names within Content.
const (
	TreeFile     = "tree.yaml"
	ArticlesFile = "articles.yaml"
)

//go:embed content/*.yaml
var rawContent embed.FS

// Content is the embedded content filesystem with the "content/" prefix stripped.
var Content = mustSub(rawContent, "content")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// OverlayFS returns a filesystem that checks localDir on disk first,
// falling back to the embedded filesystem for files not found locally.
func OverlayFS(localDir string, embedded fs.FS) fs.FS {
	return overlayFS{localDir: localDir, embedded: embedded}
}

type overlayFS struct {
	localDir string
	embedded fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	f, err := os.Open(filepath.Join(o.localDir, name))
	if err == nil {
		return f, nil
	}
	return o.embedded.Open(name)
}
