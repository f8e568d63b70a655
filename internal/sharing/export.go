package sharing

import (
	"path/filepath"
	"strings"

	"reliquary/internal/fileutil"
	"reliquary/internal/relic"
)

var filenameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// PackageName is the file name a transmission with these filters is exported
// under.
func PackageName(contributor, theme string) string {
	name := "transmission_" + orDefault(strings.TrimSpace(contributor), "all") +
		"_" + orDefault(strings.TrimSpace(theme), "all") + ".json"
	return filenameReplacer.Replace(name)
}

// Export writes the tagged subset to destDir as an indented JSON array and
// returns the written path. A package with the same filters is overwritten.
func Export(subset []relic.Relic, destDir, contributor, theme string) (string, error) {
	if subset == nil {
		subset = []relic.Relic{}
	}
	path := filepath.Join(destDir, PackageName(contributor, theme))
	if err := fileutil.WriteJSONAtomic(path, subset); err != nil {
		return "", err
	}
	return path, nil
}

// ReadPackage loads an exported transmission package.
func ReadPackage(path string) ([]relic.Relic, fileutil.State, error) {
	var relics []relic.Relic
	state, err := fileutil.ReadJSON(path, &relics)
	return relics, state, err
}
