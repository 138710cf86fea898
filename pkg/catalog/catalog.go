// Package catalog loads style documents and matches dataset metadata
// against them.
//
// A catalog is built from an ordered list of sources. The built-in styles
// embedded in the binary come first; user directories follow. Matching
// scans sources from the last to the first, so user styles take priority
// over the built-ins, and records inside one source in load order. The
// first record whose criteria match wins.
//
// A loaded [Catalog] is immutable and safe for concurrent use.
package catalog

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/observability"
	"github.com/matzehuels/mapstyle/pkg/style"
)

//go:embed styles/*.yaml
var builtin embed.FS

// BuiltinName names the embedded source.
const BuiltinName = "builtin"

// Source is a tree of style documents.
type Source struct {
	// Name identifies the source in errors and listings.
	Name string
	FS   fs.FS
	// Files restricts loading to these paths within FS. Empty means every
	// *.yaml and *.yml file under the root.
	Files []string
}

// Builtin returns the source of the styles embedded in the binary.
func Builtin() Source {
	sub, _ := fs.Sub(builtin, "styles")
	return Source{Name: BuiltinName, FS: sub}
}

// FSSource wraps an fs.FS.
func FSSource(name string, fsys fs.FS) Source {
	return Source{Name: name, FS: fsys}
}

// PathSource returns a source for a directory or a single style file.
func PathSource(p string) (Source, error) {
	if err := errors.ValidatePath(p); err != nil {
		return Source{}, err
	}
	info, err := os.Stat(p)
	if os.IsNotExist(err) {
		return Source{}, errors.New(errors.ErrCodeFileNotFound, "style path %s does not exist", p)
	}
	if err != nil {
		return Source{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "style path %s", p)
	}
	if info.IsDir() {
		return Source{Name: p, FS: os.DirFS(p)}, nil
	}
	return Source{Name: p, FS: os.DirFS(filepath.Dir(p)), Files: []string{filepath.Base(p)}}, nil
}

// Catalog is an immutable set of style records.
type Catalog struct {
	sources     []string
	records     []*style.Record
	byID        map[string]*style.Record
	fingerprint string
}

// Load reads every source and builds a catalog. Any malformed document
// fails the whole load. Within one source ids must be unique; a later
// source may redefine an id, which hides the earlier record.
func Load(ctx context.Context, sources ...Source) (*Catalog, error) {
	start := time.Now()
	c, err := load(ctx, sources)
	n := 0
	if c != nil {
		n = c.Len()
	}
	observability.Resolve().OnCatalogLoad(ctx, len(sources), n, time.Since(start), err)
	return c, err
}

func load(ctx context.Context, sources []Source) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*style.Record)}
	hash := sha256.New()
	perSource := make([][]*style.Record, len(sources))

	for i, src := range sources {
		if src.FS == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "style source %q has no file system", src.Name)
		}
		files, err := listFiles(src)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]string)
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			data, err := fs.ReadFile(src.FS, file)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", sourcePath(src, file))
			}
			name := sourcePath(src, file)
			hash.Write([]byte(name))
			hash.Write([]byte{0})
			hash.Write(data)

			records, err := style.Decode(data, name)
			if err != nil {
				return nil, err
			}
			for _, rec := range records {
				if prev, dup := seen[rec.ID]; dup {
					return nil, errors.New(errors.ErrCodeInvalidDocument,
						"duplicate style id %q in %s and %s", rec.ID, prev, name)
				}
				seen[rec.ID] = name
				perSource[i] = append(perSource[i], rec)
			}
		}
		c.sources = append(c.sources, src.Name)
	}

	for _, records := range perSource {
		for _, rec := range records {
			c.byID[rec.ID] = rec
		}
	}
	for i := len(perSource) - 1; i >= 0; i-- {
		for _, rec := range perSource[i] {
			if c.byID[rec.ID] == rec {
				c.records = append(c.records, rec)
			}
		}
	}
	c.fingerprint = hex.EncodeToString(hash.Sum(nil))
	return c, nil
}

func listFiles(src Source) ([]string, error) {
	if len(src.Files) > 0 {
		files := append([]string(nil), src.Files...)
		sort.Strings(files)
		return files, nil
	}
	var files []string
	err := fs.WalkDir(src.FS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if isStyleFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "scan %s", src.Name)
	}
	return files, nil
}

func isStyleFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return !strings.HasPrefix(path.Base(p), ".")
	}
	return false
}

func sourcePath(src Source, file string) string {
	if src.Name == "" {
		return file
	}
	return src.Name + "/" + file
}

// Match returns the first record, in priority order, whose criteria match
// md. It reports false when nothing matches; callers then fall back to
// generic defaults.
func (c *Catalog) Match(md style.Metadata) (*style.Record, bool) {
	for _, rec := range c.records {
		if rec.Matches(md) {
			return rec, true
		}
	}
	return nil, false
}

// Get returns the record with the given id.
func (c *Catalog) Get(id string) (*style.Record, error) {
	if rec, ok := c.byID[id]; ok {
		return rec, nil
	}
	return nil, errors.New(errors.ErrCodeStyleNotFound, "no style %q in catalog", id)
}

// Records returns the visible records in priority order.
func (c *Catalog) Records() []*style.Record {
	return append([]*style.Record(nil), c.records...)
}

// IDs returns the ids of the visible records in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of visible records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Sources returns the source names in registration order.
func (c *Catalog) Sources() []string {
	return append([]string(nil), c.sources...)
}

// Fingerprint returns a content hash of every loaded document.
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}
