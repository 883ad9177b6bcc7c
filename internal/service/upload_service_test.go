package service

import (
	"errors"
	"os"
	"testing"

	"github.com/dujiao-next/orderdesk/internal/config"
	"github.com/dujiao-next/orderdesk/internal/constants"
)

func newTestUploadService(t *testing.T) (*UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	return NewUploadService(config.UploadConfig{
		Dir:               dir,
		MaxSize:           1 << 20,
		MaxFiles:          3,
		AllowedTypes:      []string{"image/png"},
		AllowedExtensions: []string{"png"},
	}), dir
}

func TestUploadScopeReleaseDeletesFiles(t *testing.T) {
	svc, dir := newTestUploadService(t)
	scope := svc.NewScope(constants.UploadSceneOrderDesign)
	if err := scope.Accept(buildFileHeaders(t, "a.png", "b.png")); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if len(scope.Files()) != 2 {
		t.Fatalf("expected 2 files, got %d", len(scope.Files()))
	}
	for _, file := range scope.Files() {
		if _, err := os.Stat(file.DiskPath); err != nil {
			t.Fatalf("file should exist: %v", err)
		}
	}
	scope.Release()
	scope.Release()
	if got := countStoredFiles(t, dir); got != 0 {
		t.Fatalf("release should delete files, %d left", got)
	}
}

func TestUploadScopeCommitKeepsFiles(t *testing.T) {
	svc, dir := newTestUploadService(t)
	scope := svc.NewScope(constants.UploadSceneOrderDesign)
	if err := scope.Accept(buildFileHeaders(t, "a.png")); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	scope.Commit()
	scope.Release()
	if got := countStoredFiles(t, dir); got != 1 {
		t.Fatalf("committed files should stay, got %d", got)
	}
}

func TestUploadScopeRejectsBeforeSaving(t *testing.T) {
	svc, dir := newTestUploadService(t)
	scope := svc.NewScope(constants.UploadSceneOrderDesign)
	if err := scope.Accept(buildFileHeaders(t, "a.png", "b.png", "c.png", "d.png")); !errors.Is(err, ErrUploadTooMany) {
		t.Fatalf("expected too many, got %v", err)
	}
	if err := scope.Accept(buildFileHeaders(t, "a.png", "notes.txt")); !errors.Is(err, ErrUploadInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}
	if got := countStoredFiles(t, dir); got != 0 {
		t.Fatalf("rejected uploads must not be stored, got %d", got)
	}
}

func TestUploadValidateContentType(t *testing.T) {
	svc, _ := newTestUploadService(t)
	files := buildFileHeaders(t, "fake.png")
	contentType, err := svc.Validate(files[0])
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if contentType != "image/png" {
		t.Fatalf("unexpected content type: %s", contentType)
	}
	if _, err := svc.Validate(nil); !errors.Is(err, ErrUploadInvalid) {
		t.Fatalf("nil file should be invalid, got %v", err)
	}
}
