package onedb

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gapscan/errors"
)

// DatabaseFile is the database member inside a backup archive.
const DatabaseFile = "onedb.xml"

// ExtractBackup makes the XML database available as a seekable file.
// A plain .xml path is returned unchanged; a gzipped tar backup has its
// onedb.xml member extracted into destDir. Two passes read the database
// (object count, then analysis), so the archive member cannot be streamed
// directly.
func ExtractBackup(path, destDir string) (string, error) {
	if strings.HasSuffix(path, ".xml") {
		if _, err := os.Stat(path); err != nil {
			return "", errors.Wrapf(err, "database %q", path)
		}
		return path, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "backup %q", path)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", errors.Wrapf(err, "backup %q is not a gzipped archive", path)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Wrapf(err, "reading backup %q", path)
		}
		if hdr.Typeflag != tar.TypeReg || filepath.Base(hdr.Name) != DatabaseFile {
			continue
		}

		dest := filepath.Join(destDir, DatabaseFile)
		out, err := os.Create(dest)
		if err != nil {
			return "", errors.Wrap(err, "extracting database")
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			os.Remove(dest)
			return "", errors.Wrap(err, "extracting database")
		}
		if err := out.Close(); err != nil {
			return "", errors.Wrap(err, "extracting database")
		}
		return dest, nil
	}

	return "", errors.Wrapf(errors.ErrNotFound, "%s not present in backup %q", DatabaseFile, path)
}
