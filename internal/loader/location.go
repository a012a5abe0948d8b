package loader

import (
	"fmt"
	"path"
	"slices"
	"strings"
)

// resolveSystemID joins a schemaLocation onto the directory of the document
// that declared it. Locations must be relative, slash-separated, and must not
// escape the filesystem root.
func resolveSystemID(baseSystemID, schemaLocation string) (string, error) {
	if schemaLocation == "" {
		return "", fmt.Errorf("schema location is empty")
	}
	if strings.Contains(schemaLocation, "\\") {
		return "", fmt.Errorf("schema location contains backslash: %q", schemaLocation)
	}
	if strings.HasPrefix(schemaLocation, "/") || strings.Contains(schemaLocation, "://") {
		return "", fmt.Errorf("schema location must be relative: %q", schemaLocation)
	}
	if slices.Contains(strings.Split(schemaLocation, "/"), "") {
		return "", fmt.Errorf("invalid schema location segment: %q", schemaLocation)
	}

	joined := path.Clean(schemaLocation)
	if dir := path.Dir(baseSystemID); baseSystemID != "" && dir != "." {
		joined = path.Clean(dir + "/" + schemaLocation)
	}
	if joined == "." {
		return "", fmt.Errorf("schema location is empty")
	}
	if joined == ".." || strings.HasPrefix(joined, "../") {
		return "", fmt.Errorf("schema location escapes root: %q", schemaLocation)
	}
	return joined, nil
}
