package utils_test

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mirrormerge/internal/utils"
)

const (
	testPromptTextConstant   = "Merge complete; push to server? [y|n]: "
	testOutputFileConstant   = "operator.log"
	testSyncFailureConstant  = "disk detached"
	testConflictListConstant = "UU content/browser.cc\n"
)

type syncRecordingWriter struct {
	bytes.Buffer
	syncError error
	syncCalls int
}

func (writer *syncRecordingWriter) Sync() error {
	writer.syncCalls++
	return writer.syncError
}

func TestFlushingWriterMakesBufferedPromptsVisible(testInstance *testing.T) {
	destination := &bytes.Buffer{}
	bufferedWriter := bufio.NewWriterSize(destination, 4096)

	flushingWriter := utils.NewFlushingWriter(bufferedWriter)
	bytesWritten, writeError := flushingWriter.Write([]byte(testPromptTextConstant))

	require.NoError(testInstance, writeError)
	require.Equal(testInstance, len(testPromptTextConstant), bytesWritten)
	require.Equal(testInstance, testPromptTextConstant, destination.String())
}

func TestFlushingWriterSyncsFiles(testInstance *testing.T) {
	outputPath := filepath.Join(testInstance.TempDir(), testOutputFileConstant)
	outputFile, createError := os.Create(outputPath)
	require.NoError(testInstance, createError)
	defer outputFile.Close()

	flushingWriter := utils.NewFlushingWriter(outputFile)
	_, writeError := flushingWriter.Write([]byte(testConflictListConstant))
	require.NoError(testInstance, writeError)

	contents, readError := os.ReadFile(outputPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testConflictListConstant, string(contents))
}

func TestFlushingWriterSyncErrors(testInstance *testing.T) {
	testCases := []struct {
		name          string
		syncError     error
		expectedError error
	}{
		{name: "sync_succeeds"},
		{name: "terminal_rejects_sync", syncError: syscall.EINVAL},
		{name: "pipe_rejects_sync", syncError: fmt.Errorf("sync /dev/stdout: %w", syscall.ENOTSUP)},
		{name: "real_failure_reported", syncError: errors.New(testSyncFailureConstant), expectedError: errors.New(testSyncFailureConstant)},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			destination := &syncRecordingWriter{syncError: testCase.syncError}
			flushingWriter := utils.NewFlushingWriter(destination)

			bytesWritten, writeError := flushingWriter.Write([]byte(testPromptTextConstant))
			require.Equal(testInstance, len(testPromptTextConstant), bytesWritten)
			require.Equal(testInstance, 1, destination.syncCalls)
			require.Equal(testInstance, testPromptTextConstant, destination.String())
			if testCase.expectedError == nil {
				require.NoError(testInstance, writeError)
				return
			}
			require.EqualError(testInstance, writeError, testCase.expectedError.Error())
		})
	}
}

func TestNewFlushingWriterEdgeCases(testInstance *testing.T) {
	require.Equal(testInstance, io.Discard, utils.NewFlushingWriter(nil))

	wrapped := utils.NewFlushingWriter(&bytes.Buffer{})
	require.Same(testInstance, wrapped, utils.NewFlushingWriter(wrapped))
}
