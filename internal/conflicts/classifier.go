package conflicts

import (
	"iter"
	"strings"
)

const (
	statusCodeLengthConstant               = 2
	statusCodeSeparatorConstant            = ' '
	lineSeparatorConstant                  = "\n"
	carriageReturnConstant                 = "\r"
	conflictKindDeletedByUsLabelConstant   = "deleted-by-us"
	conflictKindRenamedByThemLabelConstant = "renamed-by-them"
	conflictKindOtherLabelConstant         = "other-unresolved"
	conflictKindUnknownLabelConstant       = "unknown"
)

// StatusCode is the two-character XY code of a porcelain status line.
type StatusCode string

// Unresolved status codes reported by git during a merge.
const (
	StatusBothDeleted   StatusCode = "DD"
	StatusAddedByUs     StatusCode = "AU"
	StatusDeletedByThem StatusCode = "UD"
	StatusAddedByThem   StatusCode = "UA"
	StatusDeletedByUs   StatusCode = "DU"
	StatusBothAdded     StatusCode = "AA"
	StatusBothModified  StatusCode = "UU"
)

// ConflictKind groups unresolved status codes by how they are handled.
type ConflictKind int

// Supported conflict kinds.
const (
	// ConflictDeletedByUs covers paths deleted locally; the local deletion wins.
	ConflictDeletedByUs ConflictKind = iota
	// ConflictRenamedByThem covers paths upstream renamed onto a locally deleted location; they are re-added.
	ConflictRenamedByThem
	// ConflictOtherUnresolved requires a human.
	ConflictOtherUnresolved
)

// String returns a short label for the kind.
func (kind ConflictKind) String() string {
	switch kind {
	case ConflictDeletedByUs:
		return conflictKindDeletedByUsLabelConstant
	case ConflictRenamedByThem:
		return conflictKindRenamedByThemLabelConstant
	case ConflictOtherUnresolved:
		return conflictKindOtherLabelConstant
	default:
		return conflictKindUnknownLabelConstant
	}
}

var conflictKindsByStatusCode = map[StatusCode]ConflictKind{
	StatusBothDeleted:   ConflictDeletedByUs,
	StatusDeletedByUs:   ConflictDeletedByUs,
	StatusAddedByThem:   ConflictRenamedByThem,
	StatusAddedByUs:     ConflictOtherUnresolved,
	StatusDeletedByThem: ConflictOtherUnresolved,
	StatusBothAdded:     ConflictOtherUnresolved,
	StatusBothModified:  ConflictOtherUnresolved,
}

// KindOf reports the conflict kind of a status code and whether the code is unresolved.
func KindOf(statusCode StatusCode) (ConflictKind, bool) {
	kind, unresolved := conflictKindsByStatusCode[statusCode]
	return kind, unresolved
}

// ConflictRecord describes one unresolved path.
type ConflictRecord struct {
	Path       string
	StatusCode StatusCode
	Kind       ConflictKind
	// Line is the status line as reported, used when presenting conflicts to the operator.
	Line string
}

// Classify yields the unresolved entries of porcelain status output in input order.
// Lines with resolved or unknown codes are skipped. The sequence can be ranged repeatedly.
func Classify(statusOutput string) iter.Seq[ConflictRecord] {
	return func(yield func(ConflictRecord) bool) {
		for _, rawLine := range strings.Split(statusOutput, lineSeparatorConstant) {
			record, unresolved := parseStatusLine(strings.TrimSuffix(rawLine, carriageReturnConstant))
			if !unresolved {
				continue
			}
			if !yield(record) {
				return
			}
		}
	}
}

// PathsOfKind collects the paths of records with the given kind, preserving order.
func PathsOfKind(records iter.Seq[ConflictRecord], kind ConflictKind) []string {
	var paths []string
	for record := range records {
		if record.Kind == kind {
			paths = append(paths, record.Path)
		}
	}
	return paths
}

// Lines collects the status lines of every record, preserving order.
func Lines(records iter.Seq[ConflictRecord]) []string {
	var lines []string
	for record := range records {
		lines = append(lines, record.Line)
	}
	return lines
}

func parseStatusLine(line string) (ConflictRecord, bool) {
	if len(line) <= statusCodeLengthConstant+1 || line[statusCodeLengthConstant] != statusCodeSeparatorConstant {
		return ConflictRecord{}, false
	}

	statusCode := StatusCode(line[:statusCodeLengthConstant])
	kind, unresolved := KindOf(statusCode)
	if !unresolved {
		return ConflictRecord{}, false
	}

	return ConflictRecord{
		Path:       line[statusCodeLengthConstant+1:],
		StatusCode: statusCode,
		Kind:       kind,
		Line:       line,
	}, true
}
