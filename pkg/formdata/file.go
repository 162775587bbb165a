package formdata

import (
	"fmt"
	"strings"
)

// File describes an uploaded file as the intake layer sees it. Content is
// optional; the core only ever needs name, size and type.
type File struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"type"`
	Content     []byte `json:"-"`
}

// Same reports whether two files are treated as the same upload. Identity is
// name plus byte size, not content.
func (f File) Same(other File) bool {
	return f.Name == other.Name && f.Size == other.Size
}

// FileHandle is a file accepted into a Files list.
type FileHandle struct {
	ID      string `json:"id"`
	File    File   `json:"file"`
	Preview string `json:"preview,omitempty"`
}

// DefaultImageTypes lists the MIME types accepted for photo uploads.
var DefaultImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/heic"}

// MegaByte is the unit used for upload ceilings.
const MegaByte int64 = 1024 * 1024

// FileLimits bounds a Files list. MaxFiles == 0 disables the count ceiling
// and MaxBytes == 0 disables the per-file size ceiling.
type FileLimits struct {
	MaxFiles     int
	MaxBytes     int64
	AllowedTypes []string
	// Noun names the files in messages ("photo", "image").
	Noun string
}

// DefaultPhotoLimits mirrors the album upload step: ten images of up to 5MB.
func DefaultPhotoLimits() FileLimits {
	return FileLimits{
		MaxFiles:     10,
		MaxBytes:     5 * MegaByte,
		AllowedTypes: append([]string(nil), DefaultImageTypes...),
		Noun:         "photo",
	}
}

func (l FileLimits) noun() string {
	if noun := strings.TrimSpace(l.Noun); noun != "" {
		return noun
	}
	return "file"
}

func (l FileLimits) allows(contentType string) bool {
	if len(l.AllowedTypes) == 0 {
		return true
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	for _, allowed := range l.AllowedTypes {
		if strings.EqualFold(allowed, ct) {
			return true
		}
	}
	return false
}

func (l FileLimits) tooLargeMessage() string {
	if l.MaxBytes%MegaByte == 0 {
		return fmt.Sprintf("File too large (max %dMB)", l.MaxBytes/MegaByte)
	}
	return fmt.Sprintf("File too large (max %.1fMB)", float64(l.MaxBytes)/float64(MegaByte))
}
