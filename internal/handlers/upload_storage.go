package handlers

import (
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// safeDeleteUpload removes a previously uploaded file, refusing any path
// that escapes the uploads tree. Deletion failures are logged only; a stale
// file on disk never fails the request that replaced it.
func safeDeleteUpload(uploadDir, relPath string) {
	trimmed := strings.TrimSpace(relPath)
	if trimmed == "" {
		return
	}

	cleanRel := path.Clean("/" + strings.TrimPrefix(trimmed, "/"))
	cleanRel = strings.TrimPrefix(cleanRel, "/")

	if !strings.HasPrefix(cleanRel, "uploads/") {
		log.Println("[UPLOAD] [WARN] refusing to delete non-upload path:", relPath)
		return
	}
	cleanRel = strings.TrimPrefix(cleanRel, "uploads/")

	cleanBase := filepath.Clean(uploadDir)
	target := filepath.Clean(filepath.Join(cleanBase, filepath.FromSlash(cleanRel)))
	if target != cleanBase && !strings.HasPrefix(target, cleanBase+string(os.PathSeparator)) {
		log.Println("[UPLOAD] [WARN] refusing to delete path outside upload root:", relPath)
		return
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		log.Println("[UPLOAD] [WARN] failed to delete old upload:", err)
	}
}
