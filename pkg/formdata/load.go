package formdata

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ReadFile describes the file at path without loading its contents. The
// content type is sniffed from the first bytes, falling back to the
// extension for formats the sniffer does not know (HEIC).
func ReadFile(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("formdata: open %s: %w", path, err)
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return File{}, fmt.Errorf("formdata: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("formdata: %s is a directory", path)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(fh, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return File{}, fmt.Errorf("formdata: read %s: %w", path, err)
	}

	return File{
		Name:        filepath.Base(path),
		Size:        info.Size(),
		ContentType: DetectContentType(filepath.Base(path), head[:n]),
	}, nil
}

// DetectContentType sniffs head and falls back to the extension of name.
func DetectContentType(name string, head []byte) string {
	sniffed := http.DetectContentType(head)
	if sniffed != "application/octet-stream" && !strings.HasPrefix(sniffed, "text/plain") {
		return sniffed
	}
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".heic", ".heif":
		return "image/heic"
	}
	if byExt := mime.TypeByExtension(ext); byExt != "" {
		return byExt
	}
	return sniffed
}
