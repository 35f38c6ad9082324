package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AccessMode is a library's declared permission (spec §4.4).
type AccessMode int

const (
	ReadWrite AccessMode = iota
	ReadOnly
	Temporary
)

func (m AccessMode) String() string {
	switch m {
	case ReadOnly:
		return "readonly"
	case Temporary:
		return "temporary"
	default:
		return "readwrite"
	}
}

// Library is a named collection of datasets backed by a directory on disk
// (spec §4.4). Datasets are cached in memory once loaded or created. A
// temporary library (WORK) is written to disk by SaveDataset like any
// read-write library; only read-only libraries reject writes.
type Library struct {
	Libref string
	Path   string
	Access AccessMode
	Codec  Codec

	datasets map[string]*Dataset // canon(name) -> dataset
}

// NewLibrary constructs a library rooted at path with the given codec. A
// nil codec defaults to BinaryCodec.
func NewLibrary(libref, path string, access AccessMode, codec Codec) *Library {
	if codec == nil {
		codec = BinaryCodec{}
	}
	return &Library{Libref: libref, Path: path, Access: access, Codec: codec, datasets: map[string]*Dataset{}}
}

func (l *Library) memberPath(name string) string {
	return filepath.Join(l.Path, strings.ToLower(name)+".sasds")
}

// GetOrCreateDataset returns the cached dataset for name, lazily loading it
// from disk on first reference, or creating a fresh empty one if no such
// member exists yet. Matches spec §4.4's get_or_create_dataset.
func (l *Library) GetOrCreateDataset(name string) (*Dataset, error) {
	key := canon(name)
	if ds, ok := l.datasets[key]; ok {
		return ds, nil
	}
	path := l.memberPath(name)
	if _, err := os.Stat(path); err == nil {
		ds, err := l.Codec.Load(path)
		if err != nil {
			return nil, fmt.Errorf("library %s: load %s: %w", l.Libref, name, err)
		}
		l.datasets[key] = ds
		return ds, nil
	}
	ds := New(l.Libref, name)
	l.datasets[key] = ds
	return ds, nil
}

// SaveDataset persists ds under this library and refreshes the in-memory
// cache. Read-only libraries reject writes.
func (l *Library) SaveDataset(name string, ds *Dataset) error {
	if l.Access == ReadOnly {
		return fmt.Errorf("library %s is readonly: cannot write member %s", l.Libref, name)
	}
	ds.Libref = l.Libref
	ds.Name = name
	if err := l.Codec.Save(l.memberPath(name), ds); err != nil {
		return fmt.Errorf("library %s: save %s: %w", l.Libref, name, err)
	}
	l.datasets[canon(name)] = ds
	return nil
}

// RemoveDataset drops name from the in-memory cache and deletes its
// on-disk member, if any (spec §4.4's remove_library semantics applied at
// member granularity, used by PROC DATASETS-style cleanup and by the
// engine's temporary-library teardown).
func (l *Library) RemoveDataset(name string) error {
	delete(l.datasets, canon(name))
	path := l.memberPath(name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("library %s: remove %s: %w", l.Libref, name, err)
	}
	if err := os.Remove(l.Codec.(interface{ catalogPath(string) string }).catalogPath(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("library %s: remove catalog for %s: %w", l.Libref, name, err)
	}
	return nil
}

// HasDataset reports whether name is known to this library, either cached
// or present on disk.
func (l *Library) HasDataset(name string) bool {
	if _, ok := l.datasets[canon(name)]; ok {
		return true
	}
	_, err := os.Stat(l.memberPath(name))
	return err == nil
}

// LibraryManager owns the set of librefs a running interpreter has defined
// (spec §4.4: define_library/get_library/remove_library).
type LibraryManager struct {
	libs map[string]*Library
}

// NewLibraryManager returns a manager pre-seeded with nothing; callers
// define WORK themselves so its temp-dir lifecycle stays in the driver's
// hands.
func NewLibraryManager() *LibraryManager {
	return &LibraryManager{libs: map[string]*Library{}}
}

// DefineLibrary registers or replaces the library bound to libref.
func (m *LibraryManager) DefineLibrary(lib *Library) {
	m.libs[canon(lib.Libref)] = lib
}

// GetLibrary returns the library bound to libref, or ok=false if undefined.
func (m *LibraryManager) GetLibrary(libref string) (*Library, bool) {
	lib, ok := m.libs[canon(libref)]
	return lib, ok
}

// RemoveLibrary un-defines libref. It does not delete files on disk; callers
// that want that do it explicitly (the driver does this for WORK at exit).
func (m *LibraryManager) RemoveLibrary(libref string) {
	delete(m.libs, canon(libref))
}
