package models

// TargetKind is the resolved filesystem kind of a user-supplied path.
type TargetKind int

const (
	// KindMissing means the path could not be stat'ed.
	KindMissing TargetKind = iota
	// KindFile covers regular files and every other non-directory entry.
	KindFile
	// KindDirectory is a directory.
	KindDirectory
)

// String returns the string representation of TargetKind.
func (k TargetKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// Target is a user-supplied path plus its resolved kind
type Target struct {
	Path string     // Path exactly as supplied by the user
	Kind TargetKind // Kind resolved by classification
}
