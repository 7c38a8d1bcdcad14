package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "marzo.xlsx"))
	touch(t, filepath.Join(dir, "abril.CSV"))
	touch(t, filepath.Join(dir, "notas.txt"))
	touch(t, filepath.Join(dir, "~$marzo.xlsx"))
	touch(t, filepath.Join(dir, ".oculto.csv"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0755))

	fm := NewFileManager(dir, t.TempDir(), t.TempDir(), false)
	files, err := fm.DiscoverInputFiles()
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "abril.CSV"),
		filepath.Join(dir, "marzo.xlsx"),
	}, files)
}

func TestDiscoverInputFiles_MissingDir(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "nope"), "", "", false)
	_, err := fm.DiscoverInputFiles()
	assert.Error(t, err)
}

func TestArchiveInputFile(t *testing.T) {
	in := t.TempDir()
	archive := filepath.Join(t.TempDir(), "archive")
	src := filepath.Join(in, "marzo.csv")
	touch(t, src)

	fm := NewFileManager(in, t.TempDir(), archive, true)
	dst, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(archive, "marzo.csv"), dst)
	assert.True(t, FileExists(dst))
	assert.False(t, FileExists(src))
}

func TestArchiveInputFile_Disabled(t *testing.T) {
	src := filepath.Join(t.TempDir(), "marzo.csv")
	touch(t, src)

	fm := NewFileManager(filepath.Dir(src), "", "unused", false)
	dst, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)
	assert.Equal(t, src, dst)
	assert.True(t, FileExists(src))
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{name}_reporte_{timestamp}.xlsx", "input/ventas_marzo.csv")
	assert.Regexp(t, regexp.MustCompile(`^ventas_marzo_reporte_\d{8}_\d{6}\.xlsx$`), name)

	name = GenerateOutputFileName("{name}-{uuid}", "ventas.xlsx")
	assert.Regexp(t, regexp.MustCompile(`^ventas-[0-9a-f-]{36}\.xlsx$`), name)
}

func TestWriteSummaryLog(t *testing.T) {
	out := t.TempDir()
	start := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

	path, err := WriteSummaryLog(ProcessingSummary{
		RunID:           "run-1",
		StartTime:       start,
		EndTime:         start.Add(2 * time.Second),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		ProcessedFiles:  []ProcessedFileInfo{{InputFile: "marzo.csv", OutputFile: "marzo_reporte.xlsx", Transactions: 3}},
		FailedFilesList: []FailedFileInfo{{InputFile: "abril.csv", ErrorType: "missing_fields", ErrorMessage: "missing required column(s): Total"}},
	}, out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "processing_summary_20240309_100000.txt"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Run ID:         run-1")
	assert.Contains(t, string(content), "marzo_reporte.xlsx")
	assert.Contains(t, string(content), "missing required column(s): Total")
}

func TestWriteErrorLog(t *testing.T) {
	out := t.TempDir()

	path, err := WriteErrorLog(nil, out)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     "abril.csv",
		ErrorType:    "row_error",
		ErrorMessage: "total is not a number",
		RowNumber:    7,
		FieldName:    "Total",
		FieldValue:   "abc",
	}}, out)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Row Number: 7")
	assert.Contains(t, string(content), "Value:      abc")
}
