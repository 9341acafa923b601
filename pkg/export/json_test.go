package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/lockport/pkg/lock"
)

func TestJSONManifest_SingleEntry(t *testing.T) {
	entry := registryEntry("foo", "1.2.3")
	entry.Package.Files = []lock.FileRecord{{File: "foo-1.2.3.whl", Hash: "sha256:abc123"}}

	got, err := jsonManifest([]lock.ResolvedEntry{entry}, Options{WithHashes: true})
	if err != nil {
		t.Fatalf("jsonManifest failed: %v", err)
	}

	want := `{"dependencies":[{"dev":false,"hashes":{"foo-1.2.3.whl":"sha256:abc123"},"name":"foo","python_version":"*","source_url":null,"sys_platform":null,"version":"1.2.3"}]}`
	if got != want {
		t.Errorf("jsonManifest = %s, want %s", got, want)
	}
}

func TestJSONManifest_MarkerFields(t *testing.T) {
	entry := lock.ResolvedEntry{
		Dependency: lock.Dependency{
			Name:        "colorama",
			Requirement: `colorama==0.4.5 ; python_version >= "3.6" and sys_platform == "win32"`,
			Marker:      `python_version >= "3.6" and sys_platform == "win32"`,
		},
		Package: lock.Package{Name: "colorama", Version: "0.4.5"},
	}

	got, err := jsonManifest([]lock.ResolvedEntry{entry}, Options{WithHashes: true})
	if err != nil {
		t.Fatalf("jsonManifest failed: %v", err)
	}

	var doc struct {
		Dependencies []struct {
			Name          string  `json:"name"`
			PythonVersion string  `json:"python_version"`
			SysPlatform   *string `json:"sys_platform"`
		} `json:"dependencies"`
	}
	if err := json.Unmarshal([]byte(got), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(doc.Dependencies) != 1 {
		t.Fatalf("got %d records, want 1", len(doc.Dependencies))
	}
	rec := doc.Dependencies[0]
	if rec.PythonVersion != ">=3.6" {
		t.Errorf("python_version = %q, want %q", rec.PythonVersion, ">=3.6")
	}
	if rec.SysPlatform == nil || *rec.SysPlatform != "win32" {
		t.Errorf("sys_platform = %v, want win32", rec.SysPlatform)
	}
}

func TestJSONManifest_PreservesResolverOrder(t *testing.T) {
	entries := []lock.ResolvedEntry{
		registryEntry("zeta", "1.0.0"),
		registryEntry("alpha", "2.0.0"),
	}

	got, err := jsonManifest(entries, Options{})
	if err != nil {
		t.Fatalf("jsonManifest failed: %v", err)
	}
	if strings.Index(got, `"name":"zeta"`) > strings.Index(got, `"name":"alpha"`) {
		t.Errorf("records must keep resolver order, got %s", got)
	}
}

func TestJSONManifest_SuppressedHashesYieldEmptyObject(t *testing.T) {
	entry := registryEntry("foo", "1.2.3")
	entry.Package.Files = []lock.FileRecord{{File: "foo-1.2.3.whl", Hash: "md5:deadbeef"}}

	got, err := jsonManifest([]lock.ResolvedEntry{entry}, Options{WithHashes: true})
	if err != nil {
		t.Fatalf("jsonManifest failed: %v", err)
	}
	if !strings.Contains(got, `"hashes":{}`) {
		t.Errorf("suppressed hashes must yield an empty object: %s", got)
	}
}

func TestJSONManifest_SourceURLAndDev(t *testing.T) {
	entry := registryEntry("foo", "1.2.3")
	entry.Package.SourceURL = "https://idx.example/simple"
	entry.Package.Develop = true

	got, err := jsonManifest([]lock.ResolvedEntry{entry}, Options{})
	if err != nil {
		t.Fatalf("jsonManifest failed: %v", err)
	}
	if !strings.Contains(got, `"source_url":"https://idx.example/simple"`) {
		t.Errorf("source_url missing: %s", got)
	}
	if !strings.Contains(got, `"dev":true`) {
		t.Errorf("dev flag missing: %s", got)
	}
}

func TestJSONManifest_EmptyEntrySet(t *testing.T) {
	got, err := jsonManifest(nil, Options{})
	if err != nil {
		t.Fatalf("jsonManifest failed: %v", err)
	}
	if got != `{"dependencies":[]}` {
		t.Errorf("jsonManifest = %s, want empty dependency array", got)
	}
}

func TestJSONManifest_RoundTrip(t *testing.T) {
	entries := []lock.ResolvedEntry{
		registryEntry("alpha", "2.0.0"),
		registryEntry("zeta", "1.0.0"),
	}

	first, err := jsonManifest(entries, Options{})
	if err != nil {
		t.Fatalf("jsonManifest failed: %v", err)
	}

	var doc manifest
	if err := json.Unmarshal([]byte(first), &doc); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	reserialized, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("reserialize failed: %v", err)
	}
	if string(reserialized) != first {
		t.Errorf("round-trip differs:\nfirst: %s\nagain: %s", first, reserialized)
	}
}
