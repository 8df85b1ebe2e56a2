package install

import (
	"os"

	"github.com/pkg/errors"

	"github.com/wenget/wenget/pkg/layout"
	"github.com/wenget/wenget/pkg/wenerr"
)

// Uninstall removes an installed package's app directory and every
// launcher published for it, keeping the ledger-filesystem coherence
// property: after a successful call, neither the install directory nor
// any of commandNames resolves to anything.
func Uninstall(l layout.Layout, installPath string, commandNames []string) error {
	for _, name := range commandNames {
		launcherPath, err := l.LauncherPath(name)
		if err != nil {
			return wenerr.New(wenerr.LauncherPublishFailed, "Uninstall", err)
		}
		if err := os.Remove(launcherPath); err != nil && !os.IsNotExist(err) {
			return wenerr.New(wenerr.LauncherPublishFailed, "Uninstall", errors.Wrapf(err, "remove launcher %s", name))
		}
	}

	if err := os.RemoveAll(installPath); err != nil {
		return wenerr.New(wenerr.ExtractionFailed, "Uninstall", errors.Wrap(err, "remove install directory"))
	}
	return nil
}
