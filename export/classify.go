package export

import (
	"path"
	"strings"
)

// defaultBinaryExts covers images, audio, video, documents, archives,
// fonts and executables. A pure extension heuristic, not a content sniff;
// misnamed files classify wrong and that is an accepted limitation.
var defaultBinaryExts = map[string]bool{
	// images
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".bmp": true, ".ico": true, ".tiff": true,
	// audio
	".mp3": true, ".wav": true, ".ogg": true, ".flac": true, ".m4a": true,
	// video
	".mp4": true, ".webm": true, ".avi": true, ".mov": true, ".mkv": true,
	// documents
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".odt": true,
	// archives
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".rar": true, ".7z": true,
	// fonts
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	// executables and opaque blobs
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".wasm": true,
	".bin": true, ".dat": true, ".class": true,
}

// Classifier decides Text vs Binary from a filename.
type Classifier struct {
	exts map[string]bool
}

// NewClassifier builds a Classifier. extra extends (never shrinks) the
// default binary-extension set unless replace is true, in which case extra
// becomes the whole set. Entries match case-insensitively, with or without
// a leading dot.
func NewClassifier(extra []string, replace bool) *Classifier {
	exts := make(map[string]bool, len(defaultBinaryExts)+len(extra))
	if !replace {
		for e := range defaultBinaryExts {
			exts[e] = true
		}
	}
	for _, e := range extra {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return &Classifier{exts: exts}
}

// Classify returns ResultBinary when the trailing extension is in the set,
// ResultText otherwise. No extension means Text.
func (c *Classifier) Classify(name string) ResultKind {
	ext := strings.ToLower(path.Ext(name))
	if ext != "" && c.exts[ext] {
		return ResultBinary
	}
	return ResultText
}
