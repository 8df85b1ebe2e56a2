// Package install implements the install pipeline (§4.3): select a
// platform binary, download it, extract it, locate the real
// executable, and publish a launcher. Install returns a Result; the
// caller records the ledger entry.
package install

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wenget/wenget/pkg/archive"
	"github.com/wenget/wenget/pkg/layout"
	"github.com/wenget/wenget/pkg/manifest"
	"github.com/wenget/wenget/pkg/platform"
	"github.com/wenget/wenget/pkg/wenerr"
)

// Downloader retrieves url into destPath. Modeled as a function type,
// not an interface, so tests can inject a closure without a mock
// transport (same pattern as cache.BucketFetcher).
type Downloader func(ctx context.Context, url, destPath string) error

// Confirm asks whether to proceed with a fallback match that requires
// confirmation. Returning false aborts the install with NoCompatibleAsset.
type Confirm func(match platform.Match) bool

// Options configures one Install call.
type Options struct {
	Layout       layout.Layout
	Download     Downloader
	Confirm      Confirm // nil means every confirmation-requiring fallback is declined
	Now          func() time.Time
	NameOverride string // corresponds to --name
	Variant      string
}

// Result is what a successful install produces, ready to be recorded
// in the ledger by the caller.
type Result struct {
	InstallPath  string
	Files        []string
	CommandNames []string
	AssetName    string
	Identifier   string
}

// Install runs the full pipeline for pkg at the given version against
// host, producing a Result the caller upserts into the ledger.
func Install(ctx context.Context, pkg manifest.Package, version string, host platform.Host, opts Options) (Result, error) {
	match, binary, err := selectBinary(pkg, host, opts.Confirm)
	if err != nil {
		return Result{}, err
	}

	installDir := opts.Layout.AppDir(ledgerKey(pkg.Name, opts.Variant))
	if err := os.RemoveAll(installDir); err != nil {
		return Result{}, wenerr.New(wenerr.ExtractionFailed, "Install", errors.Wrap(err, "remove existing install directory"))
	}

	// Each download gets its own scratch subdirectory so two installs
	// racing on the same asset filename (a reinstall and an unrelated
	// variant, say) can never collide on the same path.
	downloadPath := filepath.Join(opts.Layout.DownloadsDir(), uuid.NewString(), filepath.Base(binary.Filename))
	if err := opts.Download(ctx, binary.URL, downloadPath); err != nil {
		return Result{}, wenerr.New(wenerr.DownloadFailed, "Install", err)
	}
	defer os.RemoveAll(filepath.Dir(downloadPath))

	if err := archive.Extract(downloadPath, installDir); err != nil {
		return Result{}, wenerr.New(wenerr.ExtractionFailed, "Install", err)
	}

	extracted, err := listExtractedFiles(installDir)
	if err != nil {
		return Result{}, wenerr.New(wenerr.ExtractionFailed, "Install", err)
	}

	selected, err := SelectExecutable(extracted, pkg.Name)
	if err != nil {
		return Result{}, err
	}

	commandName := opts.NameOverride
	if commandName == "" {
		commandName = CommandName(filepath.Base(selected))
	}

	launcherPath, err := opts.Layout.LauncherPath(commandName)
	if err != nil {
		return Result{}, wenerr.New(wenerr.LauncherPublishFailed, "Install", err)
	}
	executablePath := filepath.Join(installDir, selected)
	if err := PublishLauncher(launcherPath, executablePath); err != nil {
		return Result{}, err
	}

	files := make([]string, len(extracted))
	for i, f := range extracted {
		files[i] = f.RelPath
	}

	return Result{
		InstallPath:  installDir,
		Files:        files,
		CommandNames: []string{commandName},
		AssetName:    binary.Filename,
		Identifier:   match.Identifier.String(),
	}, nil
}

func ledgerKey(repoName, variant string) string {
	if variant == "" {
		return repoName
	}
	return repoName + "::" + variant
}

func selectBinary(pkg manifest.Package, host platform.Host, confirm Confirm) (platform.Match, manifest.PlatformBinary, error) {
	available := make(map[string]bool, len(pkg.Platforms))
	for id := range pkg.Platforms {
		available[id] = true
	}

	match, ok := platform.FindBestMatch(host, available)
	if !ok {
		return platform.Match{}, manifest.PlatformBinary{}, wenerr.Newf(wenerr.NoCompatibleAsset, "selectBinary",
			"no compatible asset found for %s on %s-%s", pkg.Name, host.OS, host.Arch)
	}

	if !match.IsExact && match.RequiresConfirmation {
		if confirm == nil || !confirm(match) {
			return platform.Match{}, manifest.PlatformBinary{}, wenerr.Newf(wenerr.NoCompatibleAsset, "selectBinary",
				"user declined fallback %s for %s", match.Fallback, pkg.Name)
		}
	}

	binaries := pkg.Platforms[match.Identifier.String()]
	if len(binaries) == 0 {
		return platform.Match{}, manifest.PlatformBinary{}, wenerr.Newf(wenerr.NoCompatibleAsset, "selectBinary",
			"platform %s has no binaries for %s", match.Identifier, pkg.Name)
	}
	return match, binaries[0], nil
}

// listExtractedFiles walks installDir and returns every regular file,
// relative to installDir, with its POSIX executable bit (always false
// on Windows).
func listExtractedFiles(installDir string) ([]ExtractedFile, error) {
	var files []ExtractedFile
	err := filepath.Walk(installDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(installDir, path)
		if err != nil {
			return err
		}
		execBit := runtime.GOOS != "windows" && info.Mode()&0o111 != 0
		files = append(files, ExtractedFile{RelPath: rel, ExecBit: execBit})
		return nil
	})
	return files, err
}
