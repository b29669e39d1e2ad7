package service

import (
	"path"
	"path/filepath"
	"strings"
)

// Paths are the local and remote locations involved in converting one file
type Paths struct {
	// Extension is the last extension of the file name, leading dot included
	Extension string
	// OriginalPath is where the source object is downloaded to
	OriginalPath string
	// ConvertedName is the file name of the produced PDF
	ConvertedName string
	// ConvertedPath is where the produced PDF is written to
	ConvertedPath string
	// SourceKey is the object key of the file to convert
	SourceKey string
	// DestinationKey is the object key the PDF is uploaded to
	DestinationKey string
}

// DerivePaths computes the paths for converting filename. The destination is
// always the stem of filename with a .pdf extension.
func DerivePaths(scratchDir, sourcePrefix, destinationPrefix, filename string) Paths {
	base := path.Base(filename)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		// dotfiles like ".resume" have no extension, only a name
		stem, ext = base, ""
	}
	convertedName := stem + ".pdf"
	return Paths{
		Extension:      ext,
		OriginalPath:   filepath.Join(scratchDir, base),
		ConvertedName:  convertedName,
		ConvertedPath:  filepath.Join(scratchDir, convertedName),
		SourceKey:      joinKey(sourcePrefix, filename),
		DestinationKey: joinKey(destinationPrefix, convertedName),
	}
}

func joinKey(prefix, name string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
