package segment

import "strings"

var derivedSuffixes = []string{"_selected", "_score"}

// RootName normalises a column name so derived forms compare equal to their origin
func RootName(column string) string {
	root := strings.ToLower(column)
	for _, suffix := range derivedSuffixes {
		root = strings.ReplaceAll(root, suffix, "")
	}
	return strings.TrimSpace(root)
}

// SameVariable reports whether two columns share a root name
func SameVariable(a, b string) bool {
	return RootName(a) == RootName(b)
}
