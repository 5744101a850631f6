// Package textclean repairs transport artifacts in reconstructed note text.
package textclean

import "strings"

// artifactReplacer rewrites Windows-1252 placeholder tokens left behind by
// lossy exports, e.g. "<95>" for a bullet.
var artifactReplacer = strings.NewReplacer(
	"<95>", "-",
	"<97>", "-",
	"<8D>", "-",
	"<B0>", " ",
	"<91>", "'",
	"<92>", "'",
	"<93>", `"`,
	"<94>", `"`,
	"\r\n", "\n",
	"\r", "\n",
)

// CleanArtifacts replaces placeholder tokens, normalizes line endings and
// collapses runs of blank lines to a single blank line. Clinical wording is
// left untouched.
func CleanArtifacts(text string) string {
	if text == "" {
		return text
	}
	text = artifactReplacer.Replace(text)
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return text
}
