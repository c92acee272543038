// Package launcher assembles ready to spawn game commands from a
// version descriptor, an account and launch settings
package launcher

import (
	"math"

	"github.com/fastmc/fastmc/internals/auth"
	"github.com/fastmc/fastmc/internals/minecraft"
	"github.com/pbnjay/memory"
)

// Settings are the per-launch knobs that don't come from the version
// descriptor
type Settings struct {
	// GameDir contains saves, worlds and mods, also the working dir
	GameDir string
	// AssetsDir holds the shared asset store
	AssetsDir string
	// LibrariesDir holds library jars, laid out maven style
	LibrariesDir string
	// VersionsDir holds version jars and descriptors
	VersionsDir string
	// NativesDir is the scratch dir natives get extracted to.
	// Extraction itself happens outside this package, after assembly.
	NativesDir string

	// JavaBin is the java executable, "java" when empty
	JavaBin string

	// MinRAMMiB sets -Xms when non-zero
	MinRAMMiB int
	// MaxRAMMiB sets -Xmx, derived from system memory when zero
	MaxRAMMiB int

	// Width and Height enable the custom resolution feature when set
	Width  int
	Height int

	// Demo launches the game in demo mode
	Demo bool

	ExtraJVMArgs  []string
	ExtraGameArgs []string

	LauncherName    string
	LauncherVersion string
}

// Launcher composes launch commands. It owns no state of its own, all
// mutable state lives in the session manager.
type Launcher struct {
	Session  *auth.SessionManager
	Source   minecraft.DescriptorSource
	Fetcher  minecraft.Fetcher
	Settings Settings
}

// LaunchCommand is the final immutable artifact: everything the
// process spawning side needs
type LaunchCommand struct {
	Executable string
	Args       []string
	WorkingDir string
	Env        map[string]string
	// Natives must be extracted into the natives dir before spawning
	Natives []minecraft.NativeEntry
}

// maxRAMMiB derives the -Xmx value from system memory the same way
// the old launcher did: a quarter of system ram, at least 1 GiB, at
// most 85% of what the machine has
func (s *Settings) maxRAMMiB() int {
	if s.MaxRAMMiB != 0 {
		return s.MaxRAMMiB
	}

	sysMemMiB := float64(memory.TotalMemory()) / 1024 / 1024
	ram := math.Max(1024, sysMemMiB/4)
	ram = math.Min(ram, sysMemMiB*0.85)
	return int(ram)
}
