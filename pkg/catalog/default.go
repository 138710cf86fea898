package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/mapstyle/pkg/errors"
)

// PathEnv lists extra style directories, separated like PATH.
const PathEnv = "MAPSTYLE_PATH"

var (
	defaultMu    sync.Mutex
	defaultPaths []string
	defaultOnce  sync.Once
	defaultCat   *Catalog
	defaultErr   error
	defaultReady bool
)

// RegisterPath adds a style directory to the process-wide catalog. Paths
// registered later take priority. It fails with CATALOG_LOADED once
// [Default] has loaded the catalog.
func RegisterPath(p string) error {
	if err := errors.ValidatePath(p); err != nil {
		return err
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultReady {
		return errors.New(errors.ErrCodeCatalogLoaded, "cannot register %s: the default catalog is already loaded", p)
	}
	defaultPaths = append(defaultPaths, p)
	return nil
}

// SearchPaths returns the user style directories of the default catalog:
// those in MAPSTYLE_PATH followed by registered paths.
func SearchPaths() []string {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return searchPaths()
}

func searchPaths() []string {
	var paths []string
	for _, p := range filepath.SplitList(os.Getenv(PathEnv)) {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return append(paths, defaultPaths...)
}

// Default returns the process-wide catalog, loading it on first use from
// the built-in styles and the search paths.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultMu.Lock()
		paths := searchPaths()
		defaultReady = true
		defaultMu.Unlock()

		defaultCat, defaultErr = LoadPaths(context.Background(), paths...)
	})
	return defaultCat, defaultErr
}

// LoadPaths loads the built-in styles followed by the given directories or
// files.
func LoadPaths(ctx context.Context, paths ...string) (*Catalog, error) {
	sources := []Source{Builtin()}
	for _, p := range paths {
		src, err := PathSource(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return Load(ctx, sources...)
}

// resetDefault forgets the process-wide catalog. Tests only.
func resetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultPaths = nil
	defaultOnce = sync.Once{}
	defaultCat, defaultErr = nil, nil
	defaultReady = false
}
