package architect

import (
	"context"
	"strings"
	"testing"

	"github.com/voxeldragons/siteapi/internal/config"
)

func TestBuildSystemInstruction(t *testing.T) {
	files := []ProjectFile{
		{Name: "main.go", Path: "cmd/main.go", Content: "package main", Language: "go"},
		{Name: "index.html", Path: "web/index.html", Content: "<html></html>", Language: "html"},
	}

	prompt := BuildSystemInstruction(files)

	if !strings.HasPrefix(prompt, "You are a world-class senior full-stack engineer") {
		t.Fatalf("expected persona preamble, got %q", prompt[:60])
	}
	if !strings.Contains(prompt, "File: cmd/main.go\n```go\npackage main\n```") {
		t.Fatalf("expected first file block in prompt")
	}
	if !strings.Contains(prompt, "File: web/index.html\n```html\n<html></html>\n```") {
		t.Fatalf("expected second file block in prompt")
	}
	if strings.Index(prompt, "cmd/main.go") > strings.Index(prompt, "web/index.html") {
		t.Fatalf("expected files in given order")
	}
	if !strings.Contains(prompt, "PROJECT CONTEXT:\n") {
		t.Fatalf("expected project context marker")
	}
}

func TestBuildSystemInstruction_NoFiles(t *testing.T) {
	prompt := BuildSystemInstruction(nil)
	if !strings.HasSuffix(prompt, "PROJECT CONTEXT:\n") {
		t.Fatalf("expected empty context after marker, got %q", prompt[len(prompt)-40:])
	}
}

func TestNewService_RequiresAPIKey(t *testing.T) {
	if _, err := NewService(context.Background(), config.ArchitectConfig{Model: "gemini-3-pro-preview"}); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}
