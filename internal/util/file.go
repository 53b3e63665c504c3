package util

import (
	"path/filepath"
	"strings"
)

// 证据上传允许的文件扩展名（小写、不含点）
var (
	AllowedEvidenceExtensions = map[string]bool{
		"png": true, "jpg": true, "jpeg": true, "gif": true,
		"pdf": true, "mp3": true, "mp4": true, "wav": true,
		"doc": true, "docx": true,
	}
	ImageExtensions = map[string]bool{
		"png": true, "jpg": true, "jpeg": true, "gif": true,
	}
	AudioExtensions = map[string]bool{
		"mp3": true, "mp4": true, "wav": true,
	}
)

// FileExtension 提取小写扩展名，不含点；没有扩展名时返回空串
func FileExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return strings.TrimPrefix(ext, ".")
}

// EvidenceKind 按扩展名归类证据类型：image / audio / document
func EvidenceKind(ext string) string {
	switch {
	case ImageExtensions[ext]:
		return "image"
	case AudioExtensions[ext]:
		return "audio"
	default:
		return "document"
	}
}

// SanitizeFilename 去掉路径成分，防止上传文件名穿越目录
func SanitizeFilename(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
