package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumizer/internal/errors"
)

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	fp := NewFileProcessor(nil, 0)

	t.Run("reads utf-8 content", func(t *testing.T) {
		path := filepath.Join(dir, "resume.md")
		content := "## Summary\nPlatform engineer with Go and Kubernetes.\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		got, err := fp.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile() error: %v", err)
		}
		if got != content {
			t.Errorf("ReadFile() = %q, want %q", got, content)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := fp.ReadFile(filepath.Join(dir, "missing.md"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}
		if code := appErrorCode(t, err); code != errors.ErrCodeFileNotFound {
			t.Errorf("error code = %q, want %q", code, errors.ErrCodeFileNotFound)
		}
	})

	t.Run("directory path", func(t *testing.T) {
		_, err := fp.ReadFile(dir)
		if err == nil {
			t.Fatal("expected error for directory path")
		}
		if code := appErrorCode(t, err); code != errors.ErrCodeFileNotReadable {
			t.Errorf("error code = %q, want %q", code, errors.ErrCodeFileNotReadable)
		}
	})
}

func TestReadFileSizeLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.md")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 200)), 0600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	fp := NewFileProcessor(nil, 100)
	_, err := fp.ReadFile(path)
	if err == nil {
		t.Fatal("expected error for oversized file")
	}
	if code := appErrorCode(t, err); code != errors.ErrCodeInvalidInput {
		t.Errorf("error code = %q, want %q", code, errors.ErrCodeInvalidInput)
	}

	// The same file passes without a configured limit.
	unlimited := NewFileProcessor(nil, 0)
	if _, err := unlimited.ReadFile(path); err != nil {
		t.Errorf("ReadFile() without limit error: %v", err)
	}
}

func TestReadFileWindows1252Fallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exported.txt")

	// "Résumé" with 0xE9 for é, as written by Windows-1252 office exports.
	raw := []byte{'R', 0xE9, 's', 'u', 'm', 0xE9, '\n'}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	fp := NewFileProcessor(nil, 0)
	got, err := fp.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if got != "Résumé\n" {
		t.Errorf("ReadFile() = %q, want %q", got, "Résumé\n")
	}
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out", "resume.md")

	fp := NewFileProcessor(nil, 0)
	if err := fp.WriteFile(path, "## Summary\n"); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written file: %v", err)
	}
	if string(content) != "## Summary\n" {
		t.Errorf("written content = %q", string(content))
	}
}

func TestWriteOutputFileOverwriteGuard(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume_optimized.md")
	fp := NewFileProcessor(nil, 0)

	if err := fp.WriteOutputFile(path, "first\n", false); err != nil {
		t.Fatalf("WriteOutputFile() error on fresh path: %v", err)
	}

	err := fp.WriteOutputFile(path, "second\n", false)
	if err == nil {
		t.Fatal("expected error when output exists without overwrite")
	}
	if code := appErrorCode(t, err); code != errors.ErrCodeOutputExists {
		t.Errorf("error code = %q, want %q", code, errors.ErrCodeOutputExists)
	}

	// Content is untouched after the refused write.
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(content) != "first\n" {
		t.Errorf("content after refused write = %q, want %q", string(content), "first\n")
	}

	if err := fp.WriteOutputFile(path, "second\n", true); err != nil {
		t.Fatalf("WriteOutputFile() with overwrite error: %v", err)
	}
	content, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(content) != "second\n" {
		t.Errorf("content after overwrite = %q, want %q", string(content), "second\n")
	}
}

func TestValidateAndReadFiles(t *testing.T) {
	dir := t.TempDir()
	resumePath := filepath.Join(dir, "resume.md")
	jobPath := filepath.Join(dir, "job.txt")
	if err := os.WriteFile(resumePath, []byte("## Summary\n"), 0600); err != nil {
		t.Fatalf("failed to create resume file: %v", err)
	}
	if err := os.WriteFile(jobPath, []byte("We need a Go engineer.\n"), 0600); err != nil {
		t.Fatalf("failed to create job file: %v", err)
	}

	fp := NewFileProcessor(nil, 0)

	contents, err := fp.ValidateAndReadFiles(resumePath, jobPath)
	if err != nil {
		t.Fatalf("ValidateAndReadFiles() error: %v", err)
	}
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if contents[0] != "## Summary\n" {
		t.Errorf("contents[0] = %q", contents[0])
	}
	if contents[1] != "We need a Go engineer.\n" {
		t.Errorf("contents[1] = %q", contents[1])
	}

	if _, err := fp.ValidateAndReadFiles(resumePath, filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error when one input is missing")
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := []struct {
		resumePath string
		want       string
	}{
		{"report.txt", "report_optimized.txt"},
		{"resume.md", "resume_optimized.md"},
		{"dir/cv.markdown", "dir/cv_optimized.markdown"},
		{"resume", "resume_optimized"},
	}

	for _, tt := range tests {
		if got := DefaultOutputPath(tt.resumePath); got != tt.want {
			t.Errorf("DefaultOutputPath(%q) = %q, want %q", tt.resumePath, got, tt.want)
		}
	}
}

func TestValidateOutputTarget(t *testing.T) {
	dir := t.TempDir()
	resumePath := filepath.Join(dir, "resume.md")

	t.Run("same path rejected", func(t *testing.T) {
		err := ValidateOutputTarget(resumePath, resumePath)
		if err == nil {
			t.Fatal("expected error when output equals resume path")
		}
		if code := appErrorCode(t, err); code != errors.ErrCodeInvalidInput {
			t.Errorf("error code = %q, want %q", code, errors.ErrCodeInvalidInput)
		}
	})

	t.Run("unclean same path rejected", func(t *testing.T) {
		unclean := filepath.Join(dir, ".", "resume.md")
		if err := ValidateOutputTarget(unclean, resumePath); err == nil {
			t.Error("expected error for unclean variant of the resume path")
		}
	})

	t.Run("distinct path allowed", func(t *testing.T) {
		if err := ValidateOutputTarget(filepath.Join(dir, "resume_optimized.md"), resumePath); err != nil {
			t.Errorf("ValidateOutputTarget() error: %v", err)
		}
	})
}
