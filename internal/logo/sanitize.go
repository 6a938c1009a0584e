package logo

import "strings"

var illegalFilenameChars = strings.NewReplacer(
	"<", "", ">", "", ":", "", `"`, "", "/", "", `\`, "", "|", "", "?", "", "*", "",
)

// SanitizeFilename strips characters that are illegal in file names on common
// filesystems and trims surrounding whitespace.
func SanitizeFilename(name string) string {
	return strings.TrimSpace(illegalFilenameChars.Replace(name))
}
