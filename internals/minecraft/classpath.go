package minecraft

import (
	"os"
	"path/filepath"
	"runtime"
)

// Fetcher answers where a library lives on disk. It never downloads:
// an unknown library is a resolution error, fetching bytes is someone
// else's job.
type Fetcher interface {
	// LocalPath returns the absolute path for the given relative
	// library path, or false when the file is not available
	LocalPath(relpath string) (string, bool)
}

// DirFetcher resolves libraries inside a local libraries directory
type DirFetcher struct {
	Dir string
}

func (f *DirFetcher) LocalPath(relpath string) (string, bool) {
	full := filepath.Join(f.Dir, relpath)
	if _, err := os.Stat(full); err != nil {
		return "", false
	}
	return full, true
}

// NativeEntry is a native library that needs extraction into a loader
// visible scratch directory before launch
type NativeEntry struct {
	// Coordinate of the owning library
	Coordinate string
	// Path is the absolute path of the classifier jar
	Path string
}

// ResolvedClasspath is the classpath and native set for one launch.
// Built fresh per launch, never persisted.
type ResolvedClasspath struct {
	// Classpath in encounter order, duplicates collapsed
	Classpath []string
	// Natives requiring extraction
	Natives []NativeEntry
}

// CPSeparator returns the platform classpath separator
func CPSeparator() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}

// Joined returns the classpath joined with the platform separator
func (r *ResolvedClasspath) Joined() string {
	out := ""
	for i, p := range r.Classpath {
		if i > 0 {
			out += CPSeparator()
		}
		out += p
	}
	return out
}

type classpathEntry struct {
	lib        *Library
	classifier string
	native     bool
}

// BuildClasspath evaluates every library of a resolved descriptor
// against ctx and produces the ordered classpath plus the native
// extraction set. Duplicate base coordinates collapse to their last
// occurrence in merge order, so child versions override inherited
// entries.
func BuildClasspath(manifest *Manifest, ctx *RuleContext, fetcher Fetcher) (*ResolvedClasspath, error) {
	surviving := make([]classpathEntry, 0, len(manifest.Libraries))

	for i := range manifest.Libraries {
		lib := &manifest.Libraries[i]
		if !RulesApply(lib.Rules, ctx) {
			continue
		}

		if len(lib.Natives) != 0 {
			classifier, ok := lib.NativeClassifier(ctx)
			if !ok {
				// native-only library without a jar for this platform
				continue
			}
			surviving = append(surviving, classpathEntry{lib: lib, classifier: classifier, native: true})
			continue
		}

		surviving = append(surviving, classpathEntry{lib: lib})
	}

	// duplicate coordinates collapse to their last occurrence
	lastIndex := make(map[string]int, len(surviving))
	for i, entry := range surviving {
		lastIndex[entry.lib.BaseCoordinate()] = i
	}

	resolved := &ResolvedClasspath{}
	for i, entry := range surviving {
		if lastIndex[entry.lib.BaseCoordinate()] != i {
			continue
		}

		relpath := entry.lib.Filepath()
		if entry.native {
			relpath = entry.lib.NativeFilepath(entry.classifier)
		}

		path, ok := fetcher.LocalPath(relpath)
		if !ok {
			return nil, &UnresolvableLibraryError{Coordinate: entry.lib.Coordinate()}
		}

		if entry.native {
			resolved.Natives = append(resolved.Natives, NativeEntry{
				Coordinate: entry.lib.Coordinate(),
				Path:       path,
			})
		} else {
			resolved.Classpath = append(resolved.Classpath, path)
		}
	}

	return resolved, nil
}
