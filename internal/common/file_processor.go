package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"resumizer/internal/errors"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger      *errors.Logger
	maxFileSize int64 // zero means no limit
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger, maxFileSize int64) *FileProcessor {
	return &FileProcessor{logger: logger, maxFileSize: maxFileSize}
}

// ReadFile reads content from a file with proper error handling. Files that
// are not valid UTF-8 are decoded as Windows-1252, which covers resumes
// exported from office tooling.
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot access file: %s", filename), err)
	}
	if info.IsDir() {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Path is a directory, not a file: %s", filename), nil)
	}
	if fp.maxFileSize > 0 && info.Size() > fp.maxFileSize {
		return "", errors.NewValidationError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("File too large: %s is %s (limit %s)",
				filename, FormatFileSize(info.Size()), FormatFileSize(fp.maxFileSize)), nil)
	}

	file, err := os.Open(filename)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			// Log the error but don't override the main operation result
			if fp.logger != nil {
				fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
			}
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	if !utf8.Valid(content) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(content)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
				fmt.Sprintf("File is neither UTF-8 nor Windows-1252: %s", filename), err)
		}
		if fp.logger != nil {
			fp.logger.Debug("Decoded file as Windows-1252", "filename", filename)
		}
		content = decoded
	}

	return string(content), nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError(errors.ErrCodeFileNotWritable,
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotWritable,
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// WriteOutputFile writes content to filename, refusing to replace an
// existing file unless overwrite is set.
func (fp *FileProcessor) WriteOutputFile(filename, content string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(filename); err == nil {
			return errors.NewIOError(errors.ErrCodeOutputExists,
				fmt.Sprintf("Output file already exists: %s (use --overwrite to replace it)", filename), nil)
		}
	}
	return fp.WriteFile(filename, content)
}

// ValidateAndReadFiles validates and reads multiple input files
func (fp *FileProcessor) ValidateAndReadFiles(filenames ...string) ([]string, error) {
	contents := make([]string, len(filenames))

	for i, filename := range filenames {
		// Validate input file
		if err := ValidateInputFile(filename); err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidInput,
				fmt.Sprintf("Invalid file %s", filename), err)
		}

		// Warn about non-text files
		if !IsTextFile(filename) {
			if fp.logger != nil {
				fp.logger.Warn("File may not be a text file",
					"filename", filename)
			} else {
				fmt.Fprintf(os.Stderr, "Warning: %s may not be a text file\n", filename)
			}
		}

		// Read file content
		content, err := fp.ReadFile(filename)
		if err != nil {
			return nil, err // Error already wrapped by ReadFile
		}

		contents[i] = content
	}

	return contents, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	// The parent may not exist yet, but it must not be a regular file.
	dir := filepath.Dir(filename)
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return errors.NewIOError(errors.ErrCodeFileNotWritable,
			fmt.Sprintf("Invalid output file: parent %s is not a directory", dir), nil)
	}

	return nil
}
