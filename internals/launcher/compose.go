package launcher

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/fastmc/fastmc/internals/auth"
	"github.com/fastmc/fastmc/internals/minecraft"
	"github.com/pkg/errors"
)

// offlineToken is the placeholder access token for offline accounts
const offlineToken = "offline-token"

// defaultJVMArgs are used when a (legacy) descriptor brings no jvm
// templates of its own
var defaultJVMArgs = []minecraft.Argument{
	{Value: minecraft.StrArray{"-Djava.library.path=${natives_directory}"}},
	{Value: minecraft.StrArray{"-cp"}},
	{Value: minecraft.StrArray{"${classpath}"}},
}

// gcArgs is the G1 tuning set minecraft launchers traditionally pass
var gcArgs = []string{
	"-XX:+UnlockExperimentalVMOptions",
	"-XX:+UseG1GC",
	"-XX:G1NewSizePercent=20",
	"-XX:G1ReservePercent=20",
	"-XX:MaxGCPauseMillis=50",
	"-XX:G1HeapRegionSize=32M",
}

// AssembleLaunch resolves the version, builds the classpath, ensures a
// fresh credential and renders all argument templates into one ready
// to spawn command. The first failing sub step aborts the whole
// assembly, nothing is half done.
func (l *Launcher) AssembleLaunch(ctx context.Context, versionID string, account *auth.Account) (*LaunchCommand, error) {
	manifest, err := minecraft.Resolve(ctx, versionID, l.Source)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving version %s", versionID)
	}
	if manifest.MainClass == "" {
		return nil, fmt.Errorf("version %s has no main class", versionID)
	}

	ruleCtx := l.ruleContext()

	classpath, err := minecraft.BuildClasspath(manifest, ruleCtx, l.Fetcher)
	if err != nil {
		return nil, errors.Wrapf(err, "building classpath for %s", versionID)
	}

	accessToken := offlineToken
	if account.Kind == auth.KindMicrosoft {
		cred, err := l.Session.EnsureFresh(ctx, account, auth.DefaultFreshnessMargin)
		if err != nil {
			return nil, err
		}
		accessToken = cred.AccessToken
	}

	versionJar := filepath.Join(l.Settings.VersionsDir, manifest.ID, manifest.JarName())
	classpathString := classpath.Joined()
	if classpathString != "" {
		classpathString += minecraft.CPSeparator()
	}
	classpathString += versionJar

	vars := l.launchVars(manifest, account, accessToken, classpathString)

	jvmArgs, err := l.jvmArgs(manifest, vars, ruleCtx, versionJar)
	if err != nil {
		return nil, err
	}

	gameArgs, err := l.gameArgs(manifest, vars, ruleCtx)
	if err != nil {
		return nil, err
	}

	args := append(jvmArgs, manifest.MainClass)
	args = append(args, gameArgs...)
	args = append(args, l.Settings.ExtraGameArgs...)

	java := l.Settings.JavaBin
	if java == "" {
		java = "java"
	}

	return &LaunchCommand{
		Executable: java,
		Args:       args,
		WorkingDir: l.Settings.GameDir,
		Env: map[string]string{
			// some mods rely on PWD
			"PWD": l.Settings.GameDir,
		},
		Natives: classpath.Natives,
	}, nil
}

func (l *Launcher) ruleContext() *minecraft.RuleContext {
	ruleCtx := minecraft.CurrentContext()
	ruleCtx.Features = map[string]bool{}
	if l.Settings.Demo {
		ruleCtx.Features["is_demo_user"] = true
	}
	if l.Settings.Width != 0 && l.Settings.Height != 0 {
		ruleCtx.Features["has_custom_resolution"] = true
	}
	return ruleCtx
}

func (l *Launcher) launchVars(manifest *minecraft.Manifest, account *auth.Account, accessToken string, classpath string) map[string]string {
	s := &l.Settings
	launcherName := s.LauncherName
	if launcherName == "" {
		launcherName = "fastmc"
	}

	vars := map[string]string{
		"auth_player_name":  account.Name,
		"auth_uuid":         account.ProfileID,
		"auth_access_token": accessToken,
		// legacy versions want a combined session string
		"auth_session":    "token:" + accessToken + ":" + account.ProfileID,
		"user_type":       account.UserType(),
		"user_properties": "{}",
		"clientid":        "",
		"auth_xuid":       "",

		"version_name":      manifest.ID,
		"version_type":      manifest.Type,
		"game_directory":    s.GameDir,
		"assets_root":       s.AssetsDir,
		"game_assets":       s.AssetsDir,
		"assets_index_name": manifest.Assets,

		"launcher_name":    launcherName,
		"launcher_version": s.LauncherVersion,

		"classpath":           classpath,
		"classpath_separator": minecraft.CPSeparator(),
		"natives_directory":   s.NativesDir,
		"library_directory":   s.LibrariesDir,

		"resolution_width":  strconv.Itoa(s.Width),
		"resolution_height": strconv.Itoa(s.Height),
	}
	if manifest.AssetIndex.ID != "" {
		vars["assets_index_name"] = manifest.AssetIndex.ID
	}
	return vars
}

func (l *Launcher) jvmArgs(manifest *minecraft.Manifest, vars map[string]string, ruleCtx *minecraft.RuleContext, versionJar string) ([]string, error) {
	args := []string{}

	if l.Settings.MinRAMMiB != 0 {
		args = append(args, fmt.Sprintf("-Xms%dM", l.Settings.MinRAMMiB))
	}
	args = append(args, fmt.Sprintf("-Xmx%dM", l.Settings.maxRAMMiB()))
	args = append(args, gcArgs...)
	args = append(args, "-Dminecraft.client.jar="+versionJar)

	// macos crashes without this
	if runtime.GOOS == "darwin" {
		args = append(args, "-XstartOnFirstThread")
	}

	templates := manifest.Arguments.JVM
	if len(templates) == 0 {
		templates = defaultJVMArgs
	}

	rendered, err := minecraft.RenderArguments(templates, vars, ruleCtx)
	if err != nil {
		return nil, err
	}
	args = append(args, rendered...)
	args = append(args, l.Settings.ExtraJVMArgs...)

	return args, nil
}

func (l *Launcher) gameArgs(manifest *minecraft.Manifest, vars map[string]string, ruleCtx *minecraft.RuleContext) ([]string, error) {
	if len(manifest.Arguments.Game) != 0 {
		return minecraft.RenderArguments(manifest.Arguments.Game, vars, ruleCtx)
	}
	return minecraft.RenderLegacyArguments(manifest.MinecraftArguments, vars)
}
