package catalog

import (
	"embed"
	"io/fs"
	"os"
	"sync"
)

//go:embed defaults/*
var defaultFS embed.FS

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// EmbeddedFS exposes the built-in flow and quiz definitions.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(defaultFS, "defaults")
	if err != nil {
		panic("catalog: embedded defaults missing: " + err.Error())
	}
	return sub
}

// Default returns the catalog built from the embedded definitions. It is
// parsed once and shared; registries and quizzes are immutable.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadFS(EmbeddedFS())
	})
	return defaultCatalog, defaultErr
}

// Load returns the catalog under dir, or the embedded defaults when dir is
// empty.
func Load(dir string) (*Catalog, error) {
	if dir == "" {
		return Default()
	}
	return LoadFS(os.DirFS(dir))
}
