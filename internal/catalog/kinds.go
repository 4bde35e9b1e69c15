package catalog

import (
	"path"
	"strings"
)

// languageByExt maps file extensions to language tags. Derived from the
// same extension table the stack sniffer uses, reduced to the languages
// worth tagging for relevance scoring.
var languageByExt = map[string]string{
	".go":    "go",
	".py":    "python",
	".rb":    "ruby",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".java":  "java",
	".kt":    "kotlin",
	".rs":    "rust",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cs":    "csharp",
	".php":   "php",
	".swift": "swift",
	".sh":    "shell",
	".sql":   "sql",
	".tf":    "terraform",
	".yml":   "yaml",
	".yaml":  "yaml",
	".json":  "json",
	".toml":  "toml",
	".md":    "markdown",
}

// docExts are extensions treated as prose rather than code.
var docExts = map[string]bool{
	".md": true, ".rst": true, ".txt": true, ".adoc": true,
}

// classifyKind decides an item's Kind from its relative path. Directory
// role wins over extension: a markdown file under standards/ is a
// standard, not a generic doc.
func classifyKind(relPath string) Kind {
	lower := strings.ToLower(relPath)
	ext := path.Ext(lower)

	switch {
	case underDir(lower, "standards"):
		return KindStandard
	case underDir(lower, "specs") || underDir(lower, "spec"):
		return KindSpec
	case underDir(lower, "product") || underDir(lower, "docs") || underDir(lower, "doc"):
		return KindProductDoc
	}

	if _, ok := languageByExt[ext]; ok && !docExts[ext] {
		return KindSourceCode
	}
	if docExts[ext] {
		return KindProductDoc
	}
	return KindOther
}

// staticTags returns the tags derivable from the path alone: language
// and directory role.
func staticTags(relPath string) []string {
	lower := strings.ToLower(relPath)
	var tags []string

	if lang, ok := languageByExt[path.Ext(lower)]; ok {
		tags = append(tags, lang)
	}
	if underDir(lower, "test") || underDir(lower, "tests") || strings.HasSuffix(lower, "_test.go") {
		tags = append(tags, "test")
	}
	if underDir(lower, "vendor") || underDir(lower, "third_party") {
		tags = append(tags, "vendored")
	}
	return tags
}

// underDir reports whether any path segment equals dir.
func underDir(relPath, dir string) bool {
	for _, seg := range strings.Split(relPath, "/") {
		if seg == dir {
			return true
		}
	}
	return false
}
