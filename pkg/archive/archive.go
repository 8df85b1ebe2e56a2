// Package archive extracts the formats release assets actually ship in:
// zip, tar compressed with gzip, bzip2 or xz, and 7z, plus standalone
// executables that need no extraction at all. An uncompressed .tar is not
// recognized as an archive and is copied as a standalone file.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/otiai10/copy"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"

	"github.com/wenget/wenget/pkg/platform"
)

// Extract extracts archivePath into destDir according to its detected
// format. A standalone executable (FormatExe, or any format Extract
// doesn't recognize as an archive) is copied verbatim under its own
// name rather than unpacked.
func Extract(archivePath, destDir string) error {
	format := platform.DetectFormat(archivePath)

	switch format {
	case platform.FormatTarGz:
		return extractTarGz(archivePath, destDir)
	case platform.FormatTarXz:
		return extractTarXz(archivePath, destDir)
	case platform.FormatTarBz2:
		return extractTarBz2(archivePath, destDir)
	case platform.FormatZip:
		return extractZip(archivePath, destDir)
	case platform.FormatSevenZ:
		return extractSevenZip(archivePath, destDir)
	case platform.FormatExe:
		return copyStandalone(archivePath, destDir)
	default:
		return copyStandalone(archivePath, destDir)
	}
}

// copyStandalone handles an asset that is itself the executable, with
// no archive wrapper: it is copied into destDir under its original
// filename, executable bit set regardless of the source file's mode.
func copyStandalone(archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create destination directory")
	}
	target := filepath.Join(destDir, filepath.Base(archivePath))
	if err := copy.Copy(archivePath, target, copy.Options{AddPermission: 0o111}); err != nil {
		return errors.Wrap(err, "failed to copy standalone executable")
	}
	return nil
}

func extractTarGz(archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrap(err, "failed to open archive")
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return errors.Wrap(err, "failed to create gzip reader")
	}
	defer gzReader.Close()

	return extractTarReader(gzReader, destDir)
}

func extractTarXz(archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrap(err, "failed to open archive")
	}
	defer file.Close()

	xzReader, err := xz.NewReader(file)
	if err != nil {
		return errors.Wrap(err, "failed to create xz reader")
	}

	return extractTarReader(xzReader, destDir)
}

func extractTarBz2(archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrap(err, "failed to open archive")
	}
	defer file.Close()

	return extractTarReader(bzip2.NewReader(file), destDir)
}

func extractTarReader(r io.Reader, destDir string) error {
	tarReader := tar.NewReader(r)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "failed to read tar header")
		}

		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)); err != nil {
				return errors.Wrap(err, "failed to create directory")
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errors.Wrap(err, "failed to create parent directory")
			}

			file, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return errors.Wrap(err, "failed to create file")
			}

			if _, err := io.Copy(file, tarReader); err != nil {
				file.Close()
				return errors.Wrap(err, "failed to extract file")
			}

			file.Close()
		}
	}

	return nil
}

func extractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.Wrap(err, "failed to open zip archive")
	}
	defer reader.Close()

	for _, file := range reader.File {
		target, err := safeJoin(destDir, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, file.Mode()); err != nil {
				return errors.Wrap(err, "failed to create directory")
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.Wrap(err, "failed to create parent directory")
		}

		if err := extractZipEntry(file, target); err != nil {
			return err
		}
	}

	return nil
}

func extractZipEntry(file *zip.File, target string) error {
	fileReader, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "failed to open file in archive")
	}
	defer fileReader.Close()

	targetFile, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, file.Mode())
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer targetFile.Close()

	if _, err := io.Copy(targetFile, fileReader); err != nil {
		return errors.Wrap(err, "failed to extract file")
	}
	return nil
}

func extractSevenZip(archivePath, destDir string) error {
	reader, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return errors.Wrap(err, "failed to open 7z archive")
	}
	defer reader.Close()

	for _, file := range reader.File {
		target, err := safeJoin(destDir, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, file.Mode()); err != nil {
				return errors.Wrap(err, "failed to create directory")
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.Wrap(err, "failed to create parent directory")
		}

		fileReader, err := file.Open()
		if err != nil {
			return errors.Wrap(err, "failed to open file in 7z archive")
		}

		targetFile, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, file.Mode())
		if err != nil {
			fileReader.Close()
			return errors.Wrap(err, "failed to create file")
		}

		_, copyErr := io.Copy(targetFile, fileReader)
		fileReader.Close()
		targetFile.Close()
		if copyErr != nil {
			return errors.Wrap(copyErr, "failed to extract file")
		}
	}

	return nil
}

// safeJoin joins destDir and name, rejecting any entry whose resolved
// path would escape destDir (a zip-slip / tar-slip path traversal).
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	if target != destDir && !strings.HasPrefix(target, destDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid path in archive: %s", name)
	}
	return target, nil
}
