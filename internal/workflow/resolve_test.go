package workflow

import (
	"errors"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "deploy.yml", "")
	writeFile(t, dir, "release.yaml", "")
	writeFile(t, dir, "deploy-docs.yml", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"exact file name", "deploy.yml", "deploy.yml"},
		{"base name yml", "deploy", "deploy.yml"},
		{"base name yaml", "release", "release.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(dir, tt.input)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolve_Suggestions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "deploy.yml", "")
	writeFile(t, dir, "release.yml", "")

	_, err := Resolve(dir, "dply")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
	if len(notFound.Suggestions) == 0 || notFound.Suggestions[0] != "deploy.yml" {
		t.Errorf("Suggestions = %v, want deploy.yml first", notFound.Suggestions)
	}
	if !strings.Contains(err.Error(), "did you mean deploy.yml") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestResolve_NoLocalWorkflows(t *testing.T) {
	got, err := Resolve(t.TempDir(), "remote-only.yml")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "remote-only.yml" {
		t.Errorf("got %q, want name unchanged", got)
	}
}
