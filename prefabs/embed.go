package prefabs

import (
	"embed"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DiskDir is checked before the embedded copies so edited specs load
// without a rebuild.
const DiskDir = "prefabs"

//go:embed *.yaml scripts/*.tengo
var embedded embed.FS

// Load returns a spec file by name, e.g. "duel.yaml" or "prefabs/duel.yaml".
func Load(name string) ([]byte, error) {
	return read(specPath(name))
}

// LoadScript returns a behavior script from scripts/.
func LoadScript(name string) ([]byte, error) {
	return read(path.Join("scripts", path.Base(specPath(name))))
}

func read(rel string) ([]byte, error) {
	if data, err := os.ReadFile(filepath.Join(DiskDir, filepath.FromSlash(rel))); err == nil {
		return data, nil
	}
	return embedded.ReadFile(rel)
}

func specPath(name string) string {
	s := filepath.ToSlash(name)
	s, _ = strings.CutPrefix(s, DiskDir+"/")
	return s
}
