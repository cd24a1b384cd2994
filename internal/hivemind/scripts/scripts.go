// ============================================================================
// hivemind - Pipeline-Interpreter
// ============================================================================
//
// Package:     scripts
// Description: Script library rooted at the script folder with hot-reload
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package scripts

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	hmerror "github.com/msto63/hivemind/foundation/core/error"
	hmlog "github.com/msto63/hivemind/foundation/core/log"
	"github.com/msto63/hivemind/foundation/utils/filex"
	"github.com/msto63/hivemind/pkg/core/logging"
)

const (
	// DefaultExt is appended to script names without an extension
	DefaultExt = ".tm"

	// DefaultDebounce is the quiet period before a change is reported
	DefaultDebounce = 500 * time.Millisecond
)

// Options configures a Library
type Options struct {
	Root     string
	Ext      string
	Debounce time.Duration
	Logger   *hmlog.Logger
}

// Entry is one item of a directory listing
type Entry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	IsDir   bool      `json:"is_dir"`
}

// Library gives confined access to the scripts below Root
type Library struct {
	root     string
	ext      string
	debounce time.Duration
	logger   *logging.Logger
}

// New creates a library. Root defaults to the working directory.
func New(opts Options) *Library {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Ext == "" {
		opts.Ext = DefaultExt
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		root = filepath.Clean(opts.Root)
	}
	return &Library{
		root:     root,
		ext:      opts.Ext,
		debounce: opts.Debounce,
		logger:   logging.Wrap(opts.Logger, "hivemind-scripts"),
	}
}

// Root returns the absolute library root
func (l *Library) Root() string {
	return l.root
}

// Resolve maps a script name to its file path, adding the extension when the
// name has none. Names escaping the root are rejected.
func (l *Library) Resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", hmerror.New("script name must not be empty").
			WithCode(hmerror.CodeInvalidInput).
			WithOperation("scripts.Resolve")
	}
	if filepath.Ext(name) == "" {
		name += l.ext
	}
	return l.confine(name, "scripts.Resolve")
}

// List returns the sub directories and scripts of dir, directories first.
// An empty dir or "." lists the root.
func (l *Library) List(dir string) ([]Entry, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := l.confine(dir, "scripts.List")
	if err != nil {
		return nil, err
	}

	items, err := os.ReadDir(abs)
	if err != nil {
		code := hmerror.CodeIOError
		if errors.Is(err, fs.ErrNotExist) {
			code = hmerror.CodeNotFound
		}
		return nil, hmerror.Wrap(err, "invalid directory").
			WithCode(code).
			WithOperation("scripts.List").
			WithDetail("dir", dir)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		if strings.HasPrefix(item.Name(), ".") {
			continue
		}
		if !item.IsDir() && filepath.Ext(item.Name()) != l.ext {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(abs, item.Name())
		rel, _ := filepath.Rel(l.root, path)
		entry := Entry{
			Name:    filepath.ToSlash(rel),
			Path:    path,
			ModTime: info.ModTime(),
			IsDir:   item.IsDir(),
		}
		if !item.IsDir() {
			entry.Name = strings.TrimSuffix(entry.Name, l.ext)
			entry.Size = info.Size()
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Read returns the source of the named script
func (l *Library) Read(name string) (string, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		code := hmerror.CodeIOError
		if errors.Is(err, fs.ErrNotExist) {
			code = hmerror.CodeNotFound
		}
		return "", hmerror.Wrap(err, "invalid file").
			WithCode(code).
			WithOperation("scripts.Read").
			WithDetail("name", name)
	}
	return string(data), nil
}

// Save writes content to the named script and returns its path. An existing
// script is only replaced when force is set.
func (l *Library) Save(name, content string, force bool) (string, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return "", err
	}
	if !force && filex.Exists(path) {
		return "", hmerror.New("file already exists, use force to overwrite").
			WithCode(hmerror.CodeAlreadyExists).
			WithOperation("scripts.Save").
			WithDetail("name", name)
	}
	if err := filex.EnsureDir(filepath.Dir(path), 0o755); err != nil {
		return "", hmerror.Wrap(err, "cannot save").
			WithCode(hmerror.CodeIOError).
			WithOperation("scripts.Save")
	}
	if err := filex.WriteFileAtomic(path, []byte(content), 0o644); err != nil {
		return "", hmerror.Wrap(err, "cannot save").
			WithCode(hmerror.CodeIOError).
			WithOperation("scripts.Save").
			WithDetail("name", name)
	}

	l.logger.Info("Script saved", "name", name, "bytes", len(content), "forced", force)
	return path, nil
}

func (l *Library) confine(name, op string) (string, error) {
	if filepath.IsAbs(name) {
		return "", hmerror.New("absolute paths are not allowed").
			WithCode(hmerror.CodePathOutsideRoot).
			WithOperation(op).
			WithDetail("name", name)
	}
	path := filepath.Join(l.root, name)
	rel, err := filepath.Rel(l.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", hmerror.New("path leaves the script folder").
			WithCode(hmerror.CodePathOutsideRoot).
			WithOperation(op).
			WithDetail("name", name)
	}
	return path, nil
}
