package util

import (
	"fmt"
	"strconv"
)

// index/IndexFileNames.java

const (
	// Name of the index segment file
	SEGMENTS = "segments"
	// Name of the file listing files pending deletion
	DELETABLE = "deletable"
	// Extension of compound file
	COMPOUND_FILE_EXTENSION = "cfs"
	// Extension of deleted documents file
	DELETES_EXTENSION = "del"
)

// All per-segment extensions which may exist for a segment.
var INDEX_EXTENSIONS = []string{
	"cfs", "fnm", "fdx", "fdt", "tii", "tis", "frq", "prx", "del", "tvx", "tvd", "tvf",
}

// Extensions packed into a compound file (norms are added per field).
var COMPOUND_EXTENSIONS = []string{
	"fnm", "frq", "prx", "fdx", "fdt", "tii", "tis",
}

// Term vector extensions, added to the compound file when vectors exist.
var VECTOR_EXTENSIONS = []string{
	"tvx", "tvd", "tvf",
}

/*
Returns the segment name for the given counter value, e.g. 35 gives
"_z" and 36 gives "_10".
*/
func SegmentNameFromCounter(counter int64) string {
	return "_" + strconv.FormatInt(counter, 36)
}

func SegmentFileName(name, ext string) string {
	if len(ext) > 0 {
		return name + "." + ext
	}
	return name
}

// Per-field norm file name, uncompounded (.fN) or separate (.sN).
func NormFileName(segment string, number int32, separate bool) string {
	if separate {
		return fmt.Sprintf("%v.s%v", segment, number)
	}
	return fmt.Sprintf("%v.f%v", segment, number)
}
