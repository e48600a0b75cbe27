// Package datasheet manages the spreadsheet library: a single storage
// directory of .xlsx/.xls/.xlsm files that tags reference by name.
// Files enter the library by import or by cloning a template against
// a node; removal cascades through the tag registry so no tag keeps
// referencing a deleted file. Cell-level access goes through excelize.
package datasheet

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/plantworks/leantwin/errors"
	"github.com/plantworks/leantwin/logger"
	"github.com/plantworks/leantwin/registry"
)

// spreadsheetExts are the file types the library manages.
var spreadsheetExts = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".xlsm": true,
}

// IsSpreadsheet reports whether name has a managed spreadsheet
// extension.
func IsSpreadsheet(name string) bool {
	return spreadsheetExts[strings.ToLower(filepath.Ext(name))]
}

// Library is the managed storage directory. Files are addressed by
// bare filename; paths with separators are rejected.
type Library struct {
	dir      string
	registry *registry.Registry
}

// NewLibrary opens (creating if needed) the storage directory.
func NewLibrary(dir string, reg *registry.Registry) (*Library, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create datasheet directory %s", dir)
	}
	return &Library{dir: dir, registry: reg}, nil
}

// Dir returns the storage directory path.
func (l *Library) Dir() string { return l.dir }

// Path returns the absolute path of a library file after validating
// the name stays inside the directory.
func (l *Library) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", errors.NewInvalidRequestError("invalid datasheet name %q", name)
	}
	if !IsSpreadsheet(name) {
		return "", errors.NewInvalidRequestError("%q is not a spreadsheet file", name)
	}
	return filepath.Join(l.dir, name), nil
}

// List returns every spreadsheet in the library, sorted by name.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read datasheet directory %s", l.dir)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsSpreadsheet(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Split partitions the library into files referenced by at least one
// tag and files present on disk but unreferenced. Both lists are
// sorted.
func (l *Library) Split() (assigned, unassigned []string, err error) {
	all, err := l.List()
	if err != nil {
		return nil, nil, err
	}
	refs := l.registry.AssignedDatasheets()
	for _, name := range all {
		if _, ok := refs[name]; ok {
			assigned = append(assigned, name)
		} else {
			unassigned = append(unassigned, name)
		}
	}
	return assigned, unassigned, nil
}

// Import copies an external spreadsheet into the library under its
// base name. Fails with ErrFileExists unless overwrite is set.
func (l *Library) Import(srcPath string, overwrite bool) (string, error) {
	name := filepath.Base(srcPath)
	dst, err := l.Path(name)
	if err != nil {
		return "", err
	}
	if !overwrite {
		if _, err := os.Stat(dst); err == nil {
			return "", errors.Wrapf(errors.ErrFileExists, "datasheet %q", name)
		}
	}
	if err := copyFile(srcPath, dst); err != nil {
		return "", errors.Wrapf(err, "failed to import %s", srcPath)
	}
	logger.Infow("imported datasheet template", "file", name)
	return name, nil
}

// DefaultCloneName is the proposed filename when cloning a template
// for a node: "<node>_datasheet<ext>".
func DefaultCloneName(template, node string) string {
	ext := filepath.Ext(template)
	return node + "_datasheet" + ext
}

// CloneTemplate copies a library template into a new file tied to a
// node. An empty newName uses DefaultCloneName. Fails with
// ErrFileExists unless overwrite is set. Returns the new filename.
func (l *Library) CloneTemplate(template, node, newName string, overwrite bool) (string, error) {
	src, err := l.Path(template)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(src); err != nil {
		return "", errors.NewNotFoundError("template %q", template)
	}

	if newName == "" {
		newName = DefaultCloneName(template, node)
	}
	dst, err := l.Path(newName)
	if err != nil {
		return "", err
	}
	if !overwrite {
		if _, err := os.Stat(dst); err == nil {
			return "", errors.Wrapf(errors.ErrFileExists, "datasheet %q", newName)
		}
	}

	if err := copyFile(src, dst); err != nil {
		return "", errors.Wrapf(err, "failed to clone template %s", template)
	}
	logger.Infow("cloned datasheet template", "template", template, "node", node, "file", newName)
	return newName, nil
}

// Remove deletes a file from the library and un-tags it from every
// association. Returns the tags that referenced it.
func (l *Library) Remove(name string) ([]string, error) {
	path, err := l.Path(name)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("datasheet %q", name)
		}
		return nil, errors.Wrapf(err, "failed to remove %s", name)
	}
	affected := l.registry.RemoveDatasheetEverywhere(name)
	logger.Infow("removed datasheet", "file", name, "untagged_from", affected)
	return affected, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
