package minecraft

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// Artifact is an object describing a downloadable file belonging to a
// library (the jar itself or a native classifier jar)
type Artifact struct {
	// Path of the jar file relative to the libraries folder
	Path string `json:"path,omitempty"`
	Sha1 string `json:"sha1,omitempty"`
	// Size in bytes
	Size json.Number `json:"size,omitempty"`
	// URL to download the jar file
	URL string `json:"url,omitempty"`
}

// Library is one classpath or native entry of a version descriptor
type Library struct {
	// Name is the maven style coordinate (group:artifact:version)
	Name      string `json:"name"`
	Downloads struct {
		Artifact Artifact `json:"artifact,omitempty"`
		// Classifiers holds additional artifacts, used for native jars.
		// The Natives field decides which classifier applies.
		Classifiers map[string]Artifact `json:"classifiers,omitempty"`
	} `json:"downloads,omitempty"`
	URL string `json:"url,omitempty"`
	// Rules decide whether this library is included at all.
	// No rules means always included.
	Rules []Rule `json:"rules,omitempty"`
	// Natives maps OS names to native classifier ids
	Natives map[string]string `json:"natives,omitempty"`
}

// Coordinate returns the full maven coordinate
func (l *Library) Coordinate() string { return l.Name }

// BaseCoordinate returns the coordinate without the version
// (group:artifact). Libraries with the same base coordinate shadow
// each other at classpath build time, last one in merge order wins.
func (l *Library) BaseCoordinate() string {
	parts := strings.SplitN(l.Name, ":", 3)
	if len(parts) < 2 {
		return l.Name
	}
	return parts[0] + ":" + parts[1]
}

// NativeClassifier returns the classifier id for the given context.
// The second return is false if this library carries no native for
// that platform.
func (l *Library) NativeClassifier(ctx *RuleContext) (string, bool) {
	if len(l.Natives) == 0 {
		return "", false
	}
	classifier, ok := l.Natives[ctx.OS]
	if !ok {
		return "", false
	}
	// older descriptors template the word size into the classifier
	bits := "64"
	if ctx.Arch == "x86" || ctx.Arch == "arm32" {
		bits = "32"
	}
	return strings.ReplaceAll(classifier, "${arch}", bits), true
}

// Filepath returns the jar path relative to the libraries folder,
// deriving it from the coordinate when the descriptor does not name one
func (l *Library) Filepath() string {
	if l.Downloads.Artifact.Path != "" {
		return l.Downloads.Artifact.Path
	}
	return l.mavenPath("")
}

// NativeFilepath returns the relative path of the native classifier jar
func (l *Library) NativeFilepath(classifier string) string {
	if native, ok := l.Downloads.Classifiers[classifier]; ok && native.Path != "" {
		return native.Path
	}
	return l.mavenPath(classifier)
}

func (l *Library) mavenPath(classifier string) string {
	grouped := strings.SplitN(l.Name, ":", 3)
	if len(grouped) < 3 {
		return l.Name
	}
	basePath := filepath.Join(strings.Split(grouped[0], ".")...)
	name := grouped[1]
	version := grouped[2]

	file := name + "-" + version
	if classifier != "" {
		file += "-" + classifier
	}
	return filepath.Join(basePath, name, version, file+".jar")
}
