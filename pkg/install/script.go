package install

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wenget/wenget/pkg/manifest"
	"github.com/wenget/wenget/pkg/platform"
	"github.com/wenget/wenget/pkg/wenerr"
)

// scriptFlavorPreference orders the flavors InstallScript tries for
// host, most preferred first. A POSIX host prefers a real shell script
// it can run directly; Windows prefers PowerShell over a raw batch
// file.
func scriptFlavorPreference(host platform.Host) []manifest.ScriptFlavor {
	if host.OS == platform.Windows {
		return []manifest.ScriptFlavor{manifest.FlavorPowerShell, manifest.FlavorBatch}
	}
	return []manifest.ScriptFlavor{manifest.FlavorBash, manifest.FlavorPython}
}

// selectScriptFlavor picks the first flavor in host's preference order
// that script actually publishes.
func selectScriptFlavor(script manifest.Script, host platform.Host) (manifest.ScriptFlavor, manifest.ScriptPlatform, bool) {
	for _, flavor := range scriptFlavorPreference(host) {
		if p, ok := script.Platforms[flavor]; ok {
			return flavor, p, true
		}
	}
	return "", manifest.ScriptPlatform{}, false
}

func scriptExtension(flavor manifest.ScriptFlavor) string {
	switch flavor {
	case manifest.FlavorPowerShell:
		return "ps1"
	case manifest.FlavorBatch:
		return "bat"
	case manifest.FlavorPython:
		return "py"
	default:
		return "sh"
	}
}

// InstallScript runs the script install path (§4.3, "Script
// installation diverges after step 2"): pick the flavor matching host,
// download it, write it to apps/<name>/<name>.<ext>, mark it
// executable on POSIX, and publish an interpreter launcher — a symlink
// for a bash script on a POSIX host, an interpreter wrapper otherwise.
func InstallScript(ctx context.Context, script manifest.Script, host platform.Host, opts Options) (Result, error) {
	flavor, target, ok := selectScriptFlavor(script, host)
	if !ok {
		return Result{}, wenerr.Newf(wenerr.NoCompatibleAsset, "InstallScript",
			"no script flavor for %s matches %s-%s", script.Name, host.OS, host.Arch)
	}

	installDir := opts.Layout.AppDir(ledgerKey(script.Name, opts.Variant))
	if err := os.RemoveAll(installDir); err != nil {
		return Result{}, wenerr.New(wenerr.ExtractionFailed, "InstallScript", errors.Wrap(err, "remove existing install directory"))
	}
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return Result{}, wenerr.New(wenerr.ExtractionFailed, "InstallScript", err)
	}

	scriptFile := script.Name + "." + scriptExtension(flavor)
	scriptPath := filepath.Join(installDir, scriptFile)

	downloadPath := filepath.Join(opts.Layout.DownloadsDir(), uuid.NewString(), scriptFile)
	if err := opts.Download(ctx, target.URL, downloadPath); err != nil {
		return Result{}, wenerr.New(wenerr.DownloadFailed, "InstallScript", err)
	}
	defer os.RemoveAll(filepath.Dir(downloadPath))

	data, err := os.ReadFile(downloadPath)
	if err != nil {
		return Result{}, wenerr.New(wenerr.ExtractionFailed, "InstallScript", errors.Wrap(err, "read downloaded script"))
	}
	mode := os.FileMode(0o644)
	if runtime.GOOS != "windows" {
		mode = 0o755
	}
	if err := os.WriteFile(scriptPath, data, mode); err != nil {
		return Result{}, wenerr.New(wenerr.ExtractionFailed, "InstallScript", errors.Wrap(err, "write script"))
	}
	if runtime.GOOS != "windows" && !statExecBit(scriptPath) {
		log.WithField("script", script.Name).Warn("installed script did not take the executable bit")
	}

	commandName := opts.NameOverride
	if commandName == "" {
		commandName = script.Name
	}
	launcherPath, err := opts.Layout.LauncherPath(commandName)
	if err != nil {
		return Result{}, wenerr.New(wenerr.LauncherPublishFailed, "InstallScript", err)
	}
	if err := PublishScriptLauncher(launcherPath, scriptPath, flavor); err != nil {
		return Result{}, err
	}

	return Result{
		InstallPath:  installDir,
		Files:        []string{scriptFile},
		CommandNames: []string{commandName},
		AssetName:    scriptFile,
		Identifier:   string(flavor),
	}, nil
}
