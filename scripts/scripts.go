// Package scripts embeds the built-in Risor key scripts. Each file under
// keys/ evaluates to the value of one computed key for the category it runs
// on.
package scripts

import (
	"embed"
	"io/fs"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
)

//go:embed keys/*.risor
var FS embed.FS

// KeyNames lists the built-in key scripts by name, sorted.
func KeyNames() []string {
	entries, err := fs.ReadDir(FS, "keys")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".risor"); ok {
			out = append(out, name)
		}
	}
	return out
}

// KeyPath returns the path of the named key script within FS.
func KeyPath(name string) (string, error) {
	p := path.Join("keys", name+".risor")
	if _, err := fs.Stat(FS, p); err != nil {
		return "", errors.WithHintf(errors.Newf("no built-in key script %q", name),
			"built-in keys: %s", strings.Join(KeyNames(), ", "))
	}
	return p, nil
}
