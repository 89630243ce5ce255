package javasrc

import (
	"bytes"
	"io/fs"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// skipDirs are directory names never descended into by the filesystem walk.
var skipDirs = map[string]bool{
	"build":        true,
	"target":       true,
	"out":          true,
	"node_modules": true,
}

// listJavaFiles returns the .java files under dir, sorted. Inside a git
// work tree it asks git, so ignored files are skipped; otherwise it walks
// the filesystem.
func listJavaFiles(dir string) ([]string, error) {
	paths, err := gitListFiles(dir)
	if err != nil {
		paths, err = walkListFiles(dir)
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// gitListFiles lists tracked and untracked, non-ignored .java files.
func gitListFiles(dir string) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard", "--", "*.java")
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "git ls-files: %s", strings.TrimSpace(stderr.String()))
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasSuffix(line, ".java") {
			continue
		}
		paths = append(paths, filepath.Join(dir, line))
	}
	return paths, nil
}

// walkListFiles skips hidden directories and common build output.
func walkListFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".java") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", dir)
	}
	return paths, nil
}
