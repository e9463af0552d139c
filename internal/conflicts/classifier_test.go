package conflicts_test

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/temirov/mirrormerge/internal/conflicts"
)

const (
	testMixedStatusOutputConstant = "DD a.txt\n M tracked.go\nUA b/c.txt\n?? scratch.txt\nUU d.txt\n"
)

func TestClassifyPreservesInputOrder(testInstance *testing.T) {
	expectedRecords := []conflicts.ConflictRecord{
		{Path: "a.txt", StatusCode: conflicts.StatusBothDeleted, Kind: conflicts.ConflictDeletedByUs, Line: "DD a.txt"},
		{Path: "b/c.txt", StatusCode: conflicts.StatusAddedByThem, Kind: conflicts.ConflictRenamedByThem, Line: "UA b/c.txt"},
		{Path: "d.txt", StatusCode: conflicts.StatusBothModified, Kind: conflicts.ConflictOtherUnresolved, Line: "UU d.txt"},
	}

	actualRecords := slices.Collect(conflicts.Classify(testMixedStatusOutputConstant))
	if difference := cmp.Diff(expectedRecords, actualRecords); difference != "" {
		testInstance.Fatalf("unexpected records (-want +got):\n%s", difference)
	}
}

func TestClassifyIsRestartable(testInstance *testing.T) {
	records := conflicts.Classify(testMixedStatusOutputConstant)

	firstPass := slices.Collect(records)
	secondPass := slices.Collect(records)
	require.Empty(testInstance, cmp.Diff(firstPass, secondPass))
	require.Len(testInstance, firstPass, 3)
}

func TestClassifyStatusCodes(testInstance *testing.T) {
	testCases := []struct {
		name           string
		statusLine     string
		expectedKind   conflicts.ConflictKind
		expectedRecord bool
	}{
		{name: "both_deleted", statusLine: "DD gone.txt", expectedKind: conflicts.ConflictDeletedByUs, expectedRecord: true},
		{name: "deleted_by_us", statusLine: "DU gone.txt", expectedKind: conflicts.ConflictDeletedByUs, expectedRecord: true},
		{name: "added_by_them", statusLine: "UA moved.txt", expectedKind: conflicts.ConflictRenamedByThem, expectedRecord: true},
		{name: "added_by_us", statusLine: "AU file.txt", expectedKind: conflicts.ConflictOtherUnresolved, expectedRecord: true},
		{name: "deleted_by_them", statusLine: "UD file.txt", expectedKind: conflicts.ConflictOtherUnresolved, expectedRecord: true},
		{name: "both_added", statusLine: "AA file.txt", expectedKind: conflicts.ConflictOtherUnresolved, expectedRecord: true},
		{name: "both_modified", statusLine: "UU file.txt", expectedKind: conflicts.ConflictOtherUnresolved, expectedRecord: true},
		{name: "modified", statusLine: "M  file.txt"},
		{name: "untracked", statusLine: "?? file.txt"},
		{name: "indented_code", statusLine: " UU file.txt"},
		{name: "missing_path", statusLine: "UU "},
		{name: "missing_separator", statusLine: "UUfile.txt"},
		{name: "empty", statusLine: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			records := slices.Collect(conflicts.Classify(testCase.statusLine))
			if !testCase.expectedRecord {
				require.Empty(testInstance, records)
				return
			}
			require.Len(testInstance, records, 1)
			require.Equal(testInstance, testCase.expectedKind, records[0].Kind)
			require.Equal(testInstance, testCase.statusLine, records[0].Line)
		})
	}
}

func TestClassifyHandlesPathsWithSpacesAndCarriageReturns(testInstance *testing.T) {
	records := slices.Collect(conflicts.Classify("UU docs/read me.txt\r\nDU old name.txt\r\n"))

	require.Equal(testInstance, []string{"docs/read me.txt", "old name.txt"}, []string{records[0].Path, records[1].Path})
}

func TestPathsOfKind(testInstance *testing.T) {
	records := conflicts.Classify("DD a.txt\nDU b.txt\nUA c.txt\nAA d.txt\nUA e.txt\n")

	require.Equal(testInstance, []string{"a.txt", "b.txt"}, conflicts.PathsOfKind(records, conflicts.ConflictDeletedByUs))
	require.Equal(testInstance, []string{"c.txt", "e.txt"}, conflicts.PathsOfKind(records, conflicts.ConflictRenamedByThem))
	require.Equal(testInstance, []string{"d.txt"}, conflicts.PathsOfKind(records, conflicts.ConflictOtherUnresolved))
	require.Equal(testInstance, []string{"DD a.txt", "DU b.txt", "UA c.txt", "AA d.txt", "UA e.txt"}, conflicts.Lines(records))
}

func TestClassifyStopsWhenConsumerBreaks(testInstance *testing.T) {
	visited := 0
	for range conflicts.Classify("UU a\nUU b\nUU c\n") {
		visited++
		if visited == 2 {
			break
		}
	}
	require.Equal(testInstance, 2, visited)
}
