package treemap

import (
	"image/color"
	"io/fs"
	"regexp"
	"strings"

	"github.com/lumipallolabs/treemapview/internal/config"
	"github.com/lumipallolabs/treemapview/internal/model"
)

// Category is the color bucket of a tile
type Category int

const (
	CategoryGeneric Category = iota
	CategoryDirectory
	CategoryImage
	CategoryExecutable
	CategoryAudio
	CategoryBackup
	CategoryArchive
	CategoryDocument
	CategorySource
	CategoryVideo
	CategoryObject
)

var categoryNames = map[Category]string{
	CategoryGeneric:    "generic",
	CategoryDirectory:  "directory",
	CategoryImage:      "image",
	CategoryExecutable: "executable",
	CategoryAudio:      "audio",
	CategoryBackup:     "backup",
	CategoryArchive:    "archive",
	CategoryDocument:   "document",
	CategorySource:     "source",
	CategoryVideo:      "video",
	CategoryObject:     "object",
}

// String returns the category's lower case name
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// Color picks the category's color from the palette
func (c Category) Color(colors config.Colors) color.RGBA {
	switch c {
	case CategoryDirectory:
		return colors.Directory
	case CategoryImage:
		return colors.Image
	case CategoryExecutable:
		return colors.Executable
	case CategoryAudio:
		return colors.Audio
	case CategoryBackup:
		return colors.Backup
	case CategoryArchive:
		return colors.Archive
	case CategoryDocument:
		return colors.Document
	case CategorySource:
		return colors.Source
	case CategoryVideo:
		return colors.Video
	case CategoryObject:
		return colors.Object
	default:
		return colors.Generic
	}
}

// Extensions compared exactly, checked before the case insensitive table
var caseSensitiveExt = map[string]Category{
	"~":   CategoryBackup,
	"bak": CategoryBackup,

	"c":   CategorySource,
	"cpp": CategorySource,
	"cc":  CategorySource,
	"h":   CategorySource,
	"hpp": CategorySource,
	"el":  CategorySource,

	"o":       CategoryObject,
	"lo":      CategoryObject,
	"Po":      CategoryObject,
	"al":      CategoryObject,
	"moc.cpp": CategoryObject,
	"moc.cc":  CategoryObject,
	"elc":     CategoryObject,
	"la":      CategoryObject,
	"a":       CategoryObject,
	"rpm":     CategoryObject,
}

// Extensions compared in lower case
var caseInsensitiveExt = map[string]Category{
	"tar.bz2": CategoryArchive,
	"tar.gz":  CategoryArchive,
	"tgz":     CategoryArchive,
	"bz2":     CategoryArchive,
	"bz":      CategoryArchive,
	"gz":      CategoryArchive,

	"html": CategoryDocument,
	"htm":  CategoryDocument,
	"txt":  CategoryDocument,
	"doc":  CategoryDocument,

	"png":  CategoryImage,
	"jpg":  CategoryImage,
	"jpeg": CategoryImage,
	"gif":  CategoryImage,
	"tif":  CategoryImage,
	"tiff": CategoryImage,
	"bmp":  CategoryImage,
	"xpm":  CategoryImage,
	"tga":  CategoryImage,

	"wav": CategoryAudio,
	"mp3": CategoryAudio,

	"avi":  CategoryVideo,
	"mov":  CategoryVideo,
	"mpg":  CategoryVideo,
	"mpeg": CategoryVideo,

	"pdf": CategoryDocument,
	"ps":  CategoryExecutable,

	// Some DOS/Windows types
	"exe": CategoryExecutable,
	"com": CategoryExecutable,
	"dll": CategoryObject,
	"zip": CategoryArchive,
	"arj": CategoryArchive,
}

var sharedLibPattern = regexp.MustCompile(`^lib.*\.so.*$`)

// ClassifyNode returns the category of a tree node
func ClassifyNode(n *model.Node) Category {
	if n == nil {
		return CategoryGeneric
	}
	if !n.IsLeaf() {
		return CategoryDirectory
	}
	return Classify(n.Name, n.Mode, n.MIME)
}

// Classify returns the category of a file from its name, permission bits
// and (optionally) sniffed MIME type.
//
// Every dot separated suffix is tried from longest to shortest, so
// "x.tar.gz" tries "tar.gz" before "gz".
func Classify(name string, mode fs.FileMode, mime string) Category {
	for ext := suffixAfterDot(name); ext != ""; ext = suffixAfterDot(ext) {
		if c, ok := caseSensitiveExt[ext]; ok {
			return c
		}
		if c, ok := caseInsensitiveExt[strings.ToLower(ext)]; ok {
			return c
		}
	}

	if sharedLibPattern.MatchString(name) {
		return CategoryObject
	}

	// Very special, but common: core dumps
	if name == "core" {
		return CategoryBackup
	}

	if mode&0o100 != 0 {
		return CategoryExecutable
	}

	if c, ok := classifyMIME(mime); ok {
		return c
	}
	return CategoryGeneric
}

// suffixAfterDot returns everything after the first '.', or ""
func suffixAfterDot(s string) string {
	_, after, found := strings.Cut(s, ".")
	if !found {
		return ""
	}
	return after
}

func classifyMIME(mime string) (Category, bool) {
	if mime == "" {
		return CategoryGeneric, false
	}
	base, _, _ := strings.Cut(mime, ";")
	base = strings.TrimSpace(base)

	switch {
	case strings.HasPrefix(base, "image/"):
		return CategoryImage, true
	case strings.HasPrefix(base, "audio/"):
		return CategoryAudio, true
	case strings.HasPrefix(base, "video/"):
		return CategoryVideo, true
	case strings.HasPrefix(base, "text/"), base == "application/pdf":
		return CategoryDocument, true
	}

	switch base {
	case "application/zip", "application/gzip", "application/x-bzip2",
		"application/x-tar", "application/x-xz", "application/x-7z-compressed",
		"application/vnd.rar", "application/zstd":
		return CategoryArchive, true
	case "application/x-executable", "application/x-mach-binary",
		"application/vnd.microsoft.portable-executable":
		return CategoryExecutable, true
	case "application/x-sharedlib", "application/x-object":
		return CategoryObject, true
	}
	return CategoryGeneric, false
}
