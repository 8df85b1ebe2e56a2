package install

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"github.com/wenget/wenget/pkg/manifest"
	"github.com/wenget/wenget/pkg/wenerr"
)

// batchEscapeReplacer escapes the characters that are special to the
// Windows command interpreter when they appear inside a batch file's
// embedded path, per §4.3 step 6.
var batchEscapeReplacer = strings.NewReplacer(
	"^", "^^",
	"&", "^&",
	"|", "^|",
	"<", "^<",
	">", "^>",
	"%", "%%",
	"!", "^!",
)

// PublishLauncher publishes launcherPath so that running it runs
// executablePath. On POSIX this is a symlink, replacing any existing
// entry at launcherPath first; on Windows it is a batch redirector that
// invokes the executable with all passed arguments via %*.
func PublishLauncher(launcherPath, executablePath string) error {
	if runtime.GOOS == "windows" {
		return publishBatchRedirector(launcherPath, executablePath)
	}
	return publishSymlink(launcherPath, executablePath)
}

func publishSymlink(launcherPath, executablePath string) error {
	if err := os.Remove(launcherPath); err != nil && !os.IsNotExist(err) {
		return wenerr.New(wenerr.LauncherPublishFailed, "PublishLauncher", errors.Wrap(err, "remove existing launcher"))
	}
	if err := os.Symlink(executablePath, launcherPath); err != nil {
		return wenerr.New(wenerr.LauncherPublishFailed, "PublishLauncher", errors.Wrap(err, "create symlink"))
	}
	return nil
}

func publishBatchRedirector(launcherPath, executablePath string) error {
	escaped := batchEscapeReplacer.Replace(executablePath)
	content := fmt.Sprintf("@echo off\r\n\"%s\" %%*\r\n", escaped)
	if err := os.WriteFile(launcherPath, []byte(content), 0o755); err != nil {
		return wenerr.New(wenerr.LauncherPublishFailed, "PublishLauncher", errors.Wrap(err, "write batch redirector"))
	}
	return nil
}

// PublishScriptLauncher publishes the launcher for a script install
// (§4.3, "Script installation diverges after step 2"). Bash on a POSIX
// host gets the same symlink treatment as a binary install, since the
// script itself is directly executable; every other flavor/OS
// combination gets an interpreter wrapper synthesized by
// interpreterWrapper, since there is no single interpreter already on
// PATH that the launcher can exec directly.
func PublishScriptLauncher(launcherPath, scriptPath string, flavor manifest.ScriptFlavor) error {
	if flavor == manifest.FlavorBash && runtime.GOOS != "windows" {
		return publishSymlink(launcherPath, scriptPath)
	}
	content, _ := interpreterWrapper(string(flavor), scriptPath)
	if content == "" {
		return wenerr.Newf(wenerr.LauncherPublishFailed, "PublishScriptLauncher", "no interpreter wrapper for flavor %q", flavor)
	}
	if err := os.Remove(launcherPath); err != nil && !os.IsNotExist(err) {
		return wenerr.New(wenerr.LauncherPublishFailed, "PublishScriptLauncher", errors.Wrap(err, "remove existing launcher"))
	}
	if err := os.WriteFile(launcherPath, []byte(content), 0o755); err != nil {
		return wenerr.New(wenerr.LauncherPublishFailed, "PublishScriptLauncher", errors.Wrap(err, "write interpreter wrapper"))
	}
	return nil
}

// interpreterWrapper returns the launcher content for a script install
// of the given flavor, running scriptPath through that flavor's
// interpreter (pwsh, bash, python3, or a batch call) with all arguments
// forwarded. isDirectCall is true only for batch. An unknown flavor
// yields empty content.
func interpreterWrapper(flavor string, scriptPath string) (content string, isDirectCall bool) {
	switch flavor {
	case "powershell":
		return fmt.Sprintf("@echo off\r\npwsh -NoProfile -ExecutionPolicy Bypass -File \"%s\" %%*\r\n",
			batchEscapeReplacer.Replace(scriptPath)), false
	case "bash":
		return fmt.Sprintf("#!/bin/sh\nexec bash \"%s\" \"$@\"\n", scriptPath), false
	case "python":
		return fmt.Sprintf("#!/bin/sh\nexec python3 \"%s\" \"$@\"\n", scriptPath), false
	case "batch":
		return fmt.Sprintf("@echo off\r\ncall \"%s\" %%*\r\n", batchEscapeReplacer.Replace(scriptPath)), true
	default:
		return "", false
	}
}
