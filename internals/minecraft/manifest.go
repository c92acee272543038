// Package minecraft models version descriptors (version.json) and turns
// them into classpaths and launch arguments
package minecraft

import "encoding/json"

// AssetIndex references the asset index a version uses
type AssetIndex struct {
	ID        string `json:"id,omitempty"`
	Sha1      string `json:"sha1,omitempty"`
	Size      int    `json:"size,omitempty"`
	TotalSize int    `json:"totalSize,omitempty"`
	URL       string `json:"url,omitempty"`
}

// JarDownload describes the client or server jar of a version
type JarDownload struct {
	Sha1 string      `json:"sha1,omitempty"`
	Size json.Number `json:"size,omitempty"`
	URL  string      `json:"url,omitempty"`
}

// Manifest is a version.json descriptor. A manifest with InheritsFrom
// set is incomplete until resolved through its parent chain.
type Manifest struct {
	ID           string `json:"id"`
	InheritsFrom string `json:"inheritsFrom,omitempty"`
	Type         string `json:"type,omitempty"`
	MainClass    string `json:"mainClass,omitempty"`
	// MinecraftArguments is the pre-1.13 single string argument form
	MinecraftArguments string `json:"minecraftArguments,omitempty"`
	// Arguments is the newer split template system
	Arguments struct {
		Game []Argument `json:"game,omitempty"`
		JVM  []Argument `json:"jvm,omitempty"`
	} `json:"arguments,omitempty"`
	Libraries  []Library  `json:"libraries,omitempty"`
	Assets     string     `json:"assets,omitempty"`
	AssetIndex AssetIndex `json:"assetIndex,omitempty"`
	Downloads  struct {
		Client JarDownload `json:"client,omitempty"`
		Server JarDownload `json:"server,omitempty"`
	} `json:"downloads,omitempty"`
	ReleaseTime string `json:"releaseTime,omitempty"`
}

// Resolved reports whether the full inheritance chain has been merged in
func (m *Manifest) Resolved() bool {
	return m.InheritsFrom == ""
}

// JarName returns the file name of the version jar
func (m *Manifest) JarName() string {
	return m.ID + ".jar"
}

// merged combines a parent with its child. Scalars take the child's
// value when present, list fields concatenate parent first with the
// child appended. Child entries never replace same named parent
// entries here: shadowing happens at classpath build time.
func merged(parent *Manifest, child *Manifest) *Manifest {
	out := *child
	out.InheritsFrom = ""

	if out.MainClass == "" {
		out.MainClass = parent.MainClass
	}
	if out.Assets == "" {
		out.Assets = parent.Assets
	}
	if out.AssetIndex.ID == "" {
		out.AssetIndex = parent.AssetIndex
	}
	if out.Type == "" {
		out.Type = parent.Type
	}
	if out.MinecraftArguments == "" {
		out.MinecraftArguments = parent.MinecraftArguments
	}
	if out.Downloads.Client.URL == "" {
		out.Downloads.Client = parent.Downloads.Client
	}
	if out.Downloads.Server.URL == "" {
		out.Downloads.Server = parent.Downloads.Server
	}

	out.Libraries = concatLibraries(parent.Libraries, child.Libraries)
	out.Arguments.Game = concatArguments(parent.Arguments.Game, child.Arguments.Game)
	out.Arguments.JVM = concatArguments(parent.Arguments.JVM, child.Arguments.JVM)

	return &out
}

func concatLibraries(parent, child []Library) []Library {
	out := make([]Library, 0, len(parent)+len(child))
	out = append(out, parent...)
	return append(out, child...)
}

func concatArguments(parent, child []Argument) []Argument {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make([]Argument, 0, len(parent)+len(child))
	out = append(out, parent...)
	return append(out, child...)
}
