package onedb

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"gapscan/errors"
)

func writeBackup(t *testing.T, dir string, members map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, "backup.tar.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for name, content := range members {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractBackup(t *testing.T) {
	dir := t.TempDir()
	backup := writeBackup(t, dir, map[string]string{
		"README.txt": "backup notes",
		"onedb.xml":  sampleDB,
	})

	dbPath, err := ExtractBackup(backup, dir)
	if err != nil {
		t.Fatalf("ExtractBackup failed: %v", err)
	}

	data, err := os.ReadFile(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != sampleDB {
		t.Error("extracted database does not match archive member")
	}
}

func TestExtractBackupMissingMember(t *testing.T) {
	dir := t.TempDir()
	backup := writeBackup(t, dir, map[string]string{"other.xml": "<DATABASE/>"})

	_, err := ExtractBackup(backup, dir)
	if err == nil {
		t.Fatal("expected error for backup without onedb.xml")
	}
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestExtractBackupPassThroughXML(t *testing.T) {
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "onedb.xml")
	if err := os.WriteFile(xmlPath, []byte(sampleDB), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ExtractBackup(xmlPath, dir)
	if err != nil {
		t.Fatalf("ExtractBackup failed: %v", err)
	}
	if got != xmlPath {
		t.Errorf("plain xml path should pass through, got %q", got)
	}
}

func TestExtractBackupNotGzip(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "backup.tar.gz")
	if err := os.WriteFile(bad, []byte("not an archive"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ExtractBackup(bad, dir); err == nil {
		t.Fatal("expected error for non-gzip input")
	}
}
