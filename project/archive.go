package project

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/plantworks/leantwin/datasheet"
	"github.com/plantworks/leantwin/errors"
	"github.com/plantworks/leantwin/logger"
	"github.com/plantworks/leantwin/store"
)

// Export packages the project directory into a zip archive: the three
// JSON documents plus the datasheets/ folder. Backup files are left
// out.
func Export(dir, zipPath string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create archive %s", zipPath)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	for _, name := range []string{SettingsFile, TagsFile, TreeFile} {
		src := pathIn(dir, name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := addFile(zw, src, name); err != nil {
			zw.Close()
			return err
		}
	}

	sheetDir := filepath.Join(dir, DatasheetDir)
	entries, err := os.ReadDir(sheetDir)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() || !datasheet.IsSpreadsheet(e.Name()) {
				continue
			}
			src := filepath.Join(sheetDir, e.Name())
			if err := addFile(zw, src, DatasheetDir+"/"+e.Name()); err != nil {
				zw.Close()
				return err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize archive")
	}
	logger.Infow("exported project archive", "path", zipPath)
	return nil
}

// Import unpacks a project archive into dir, replacing the documents
// and datasheets it contains. Entries outside the known layout are
// skipped; entry paths are validated against directory escapes.
func Import(zipPath, dir string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open archive %s", zipPath)
	}
	defer zr.Close()

	if err := os.MkdirAll(filepath.Join(dir, DatasheetDir), 0o755); err != nil {
		return errors.Wrap(err, "failed to create project directory")
	}

	extracted := 0
	for _, f := range zr.File {
		rel, ok := safeEntryPath(f.Name)
		if !ok {
			logger.Warnw("skipping unexpected archive entry", "entry", f.Name)
			continue
		}
		if err := extractFile(f, filepath.Join(dir, rel)); err != nil {
			return err
		}
		extracted++
	}

	logger.Infow("imported project archive", "path", zipPath, "files", extracted)
	return nil
}

// safeEntryPath maps an archive entry to a path relative to the
// project dir, accepting only the known documents and datasheet
// files.
func safeEntryPath(entry string) (string, bool) {
	entry = filepath.ToSlash(entry)
	if strings.Contains(entry, "..") {
		return "", false
	}

	switch entry {
	case SettingsFile, TagsFile, TreeFile:
		return entry, true
	}

	if rest, ok := strings.CutPrefix(entry, DatasheetDir+"/"); ok {
		if rest == filepath.Base(rest) && datasheet.IsSpreadsheet(rest) && !store.IsBackupFile(rest) {
			return filepath.Join(DatasheetDir, rest), true
		}
	}
	return "", false
}

func addFile(zw *zip.Writer, src, name string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", src)
	}
	defer in.Close()

	w, err := zw.Create(name)
	if err != nil {
		return errors.Wrapf(err, "failed to add %s to archive", name)
	}
	if _, err := io.Copy(w, in); err != nil {
		return errors.Wrapf(err, "failed to write %s into archive", name)
	}
	return nil
}

func extractFile(f *zip.File, dst string) error {
	in, err := f.Open()
	if err != nil {
		return errors.Wrapf(err, "failed to open archive entry %s", f.Name)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "failed to extract %s", f.Name)
	}
	return out.Close()
}

func pathIn(dir, name string) string {
	return filepath.Join(dir, name)
}
