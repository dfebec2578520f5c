// Package inputs turns command line arguments and file lists into the list of
// images to analyze.
package inputs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/utils"
)

// ErrNoMatch is returned when a wildcard or directory argument finds no files
var ErrNoMatch = errors.New("no matching files found")

// Collector accumulates input paths in argument order
type Collector struct {
	Recursive bool

	paths  []string
	logger *utils.Logger
}

// NewCollector creates a collector. recursive extends wildcard and directory
// searches into subdirectories.
func NewCollector(recursive bool, logger *utils.Logger) *Collector {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Collector{Recursive: recursive, logger: logger}
}

// Paths returns the collected paths
func (c *Collector) Paths() []string {
	return c.paths
}

// Add handles one command line argument: a wildcard pattern, a directory
// (searched for *.exe then *.dll) or a literal file name.
func (c *Collector) Add(arg string) error {
	switch {
	case HasWildcard(arg):
		found, err := Search(arg, c.Recursive)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return fmt.Errorf("%w for %s", ErrNoMatch, arg)
		}
		c.paths = append(c.paths, found...)

	case isDir(arg):
		var found []string
		for _, ext := range []string{"*.exe", "*.dll"} {
			matches, err := Search(filepath.Join(arg, ext), c.Recursive)
			if err != nil {
				return err
			}
			found = append(found, matches...)
		}
		if len(found) == 0 {
			return fmt.Errorf("%w for %s", ErrNoMatch, filepath.Join(arg, "*.exe;*.dll"))
		}
		c.paths = append(c.paths, found...)

	default:
		c.paths = append(c.paths, arg)
	}
	return nil
}

// AddFileListPath reads a file list from disk
func (c *Collector) AddFileListPath(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening file list %s: %w", path, err)
	}
	defer f.Close()
	return c.AddFileList(f)
}

// AddFileList reads one entry per line; only the first whitespace separated
// token counts. Lines starting with '#' are comments. Lines starting with '-'
// exclude a path (or wildcard) from the entries of this list. Wildcards are
// expanded without recursion.
func (c *Collector) AddFileList(r io.Reader) error {
	log := c.logger.WithComponent("inputs")

	var list []string
	excludes := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		entry := fields[0]

		switch {
		case strings.HasPrefix(entry, "#"):
			// comment

		case strings.HasPrefix(entry, "-"):
			if len(list) == 0 {
				log.Warnf("Ignoring the line '%s' in file list", entry)
				continue
			}
			pattern := entry[1:]
			if HasWildcard(pattern) {
				matches, err := Search(pattern, false)
				if err != nil {
					return err
				}
				for _, m := range matches {
					excludes[strings.ToLower(m)] = true
				}
			} else {
				excludes[strings.ToLower(pattern)] = true
			}

		case HasWildcard(entry):
			matches, err := Search(entry, false)
			if err != nil {
				return err
			}
			list = append(list, matches...)

		default:
			list = append(list, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read file list: %w", err)
	}

	kept := list[:0]
	for _, p := range list {
		if !excludes[strings.ToLower(p)] {
			kept = append(kept, p)
		}
	}

	if len(kept) == 0 {
		log.Warn("No file names found in file list")
		return nil
	}
	c.paths = append(c.paths, kept...)
	return nil
}

// HasWildcard reports whether s contains '*' or '?'
func HasWildcard(s string) bool {
	return strings.ContainsAny(s, "*?")
}

// Search returns the regular, non-hidden files matching the base name pattern
// of pattern, compared case-insensitively. With recursive set the same base
// pattern is applied to every subdirectory, depth first, after the files of
// the directory itself.
func Search(pattern string, recursive bool) ([]string, error) {
	dir, base := filepath.Split(pattern)
	if dir == "" {
		dir = "."
	}
	if _, err := filepath.Match(base, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}
	return search(filepath.Clean(dir), strings.ToLower(base), recursive)
}

func search(dir, base string, recursive bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to search %s: %w", dir, err)
	}
	var found []string
	for _, e := range entries {
		if e.IsDir() || hidden(e.Name()) || !e.Type().IsRegular() {
			continue
		}
		if ok, _ := filepath.Match(base, strings.ToLower(e.Name())); ok {
			found = append(found, filepath.Join(dir, e.Name()))
		}
	}

	if !recursive {
		return found, nil
	}
	for _, e := range entries {
		if !e.IsDir() || hidden(e.Name()) {
			continue
		}
		sub, err := search(filepath.Join(dir, e.Name()), base, recursive)
		if err != nil {
			return nil, err
		}
		found = append(found, sub...)
	}
	return found, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
