package extractor

import (
	"context"
	"fmt"
	"os"
)

// FileSource reads an export from disk.
type FileSource struct {
	Path string
}

// ReadRaw reads and extracts the file at Path.
func (s FileSource) ReadRaw(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.Path, err)
	}
	return ExtractRaw(s.Path, data)
}

// BytesSource wraps an upload already held in memory. Name is only used to
// break format ties by extension.
type BytesSource struct {
	Name string
	Data []byte
}

// ReadRaw extracts the in-memory upload.
func (s BytesSource) ReadRaw(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return ExtractRaw(s.Name, s.Data)
}

// TextSource is raw text pasted by the caller.
type TextSource string

// ReadRaw returns the text unchanged.
func (s TextSource) ReadRaw(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(s), nil
}
