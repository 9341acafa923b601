package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testLockfile = `[[package]]
name = "foo"
version = "1.2.3"
category = "main"
optional = false

[[package.files]]
file = "foo-1.2.3-py3-none-any.whl"
hash = "sha256:abc123"

[[package]]
name = "pytest"
version = "7.1.2"
category = "dev"
optional = false
`

const testPyproject = `[tool.poetry]
name = "demo"
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "poetry.lock"), []byte(testLockfile), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(testPyproject), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestRunExport_WritesRequirementsFile(t *testing.T) {
	dir := writeProject(t)

	opts := &exportOpts{format: "requirements.txt", output: "requirements.txt", dir: dir}
	if err := runExport(context.Background(), opts); err != nil {
		t.Fatalf("runExport failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "requirements.txt"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	want := "foo==1.2.3 \\\n    --hash=sha256:abc123\n"
	if string(data) != want {
		t.Errorf("output = %q, want %q", data, want)
	}
}

func TestRunExport_WithoutHashes(t *testing.T) {
	dir := writeProject(t)

	opts := &exportOpts{format: "requirements.txt", output: "out.txt", dir: dir, withoutHashes: true}
	if err := runExport(context.Background(), opts); err != nil {
		t.Fatalf("runExport failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != "foo==1.2.3\n" {
		t.Errorf("output = %q, want %q", data, "foo==1.2.3\n")
	}
}

func TestRunExport_JSONWithDev(t *testing.T) {
	dir := writeProject(t)

	opts := &exportOpts{format: "json", output: "deps.json", dir: dir, dev: true}
	if err := runExport(context.Background(), opts); err != nil {
		t.Fatalf("runExport failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "deps.json"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, `{"dependencies":[`) {
		t.Errorf("output is not a dependencies document: %q", out)
	}
	if !strings.Contains(out, `"name":"pytest"`) {
		t.Errorf("dev dependency missing from output: %q", out)
	}
}

func TestRunExport_UnsupportedFormat(t *testing.T) {
	opts := &exportOpts{format: "pipfile", dir: writeProject(t)}
	if err := runExport(context.Background(), opts); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestRunExport_MissingLockfile(t *testing.T) {
	opts := &exportOpts{format: "requirements.txt", dir: t.TempDir()}
	if err := runExport(context.Background(), opts); err == nil {
		t.Fatal("expected error for missing lockfile")
	}
}

func TestExtrasSelection(t *testing.T) {
	if extrasSelection(&exportOpts{}).Includes("tls") {
		t.Error("no flags must select no extras")
	}
	if !extrasSelection(&exportOpts{extras: []string{"tls"}}).Includes("tls") {
		t.Error("--extras must select the named extra")
	}
	if !extrasSelection(&exportOpts{allExtras: true, extras: []string{"tls"}}).All() {
		t.Error("--all-extras must win over named extras")
	}
}
