package typename

import "strings"

// ParseROS splits a normalised type name into its package, middle (msg/srv),
// and type segments. It requires at least two '/' separators; the first
// segment is the package, the last is the type, and everything between is
// the middle segment (joined back with '/' when it spans more than one
// token — the grammar only fires on the common well-formed shape; an empty
// middle segment produced by adjacent separators is handled directly since
// the segment grammar cannot capture a zero-width token).
func ParseROS(name string) (pkg, middle, typ string, err error) {
	norm, err := Normalise(name)
	if err != nil {
		return "", "", "", err
	}

	var parts []string
	if strings.Contains(norm, "//") {
		parts = strings.Split(norm, "/")
	} else {
		path, perr := segmentParser.ParseString("", norm)
		if perr != nil {
			return "", "", "", invalidName(name, "malformed ROS type name")
		}
		parts = path.Segments
	}

	if len(parts) < 3 {
		return "", "", "", invalidName(name, "requires at least two separators")
	}
	if parts[0] == "" || parts[len(parts)-1] == "" {
		return "", "", "", invalidName(name, "package and type segments must be non-empty")
	}

	pkg = parts[0]
	typ = parts[len(parts)-1]
	middle = strings.Join(parts[1:len(parts)-1], "/")
	return pkg, middle, typ, nil
}
