package provision

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// extractor unpacks a compressed tar archive into a destination directory.
type extractor interface {
	extract(archive, destDir string) error
}

// forPlatform selects the extraction strategy for a platform. Unix-like
// systems get the native tar tool, which handles xz without staging; every
// other platform gets the in-process two-stage decompress-then-untar path.
func forPlatform(platform string) extractor {
	switch platform {
	case "linux", "darwin", "freebsd":
		return externalTar{}
	default:
		return stagedTar{}
	}
}

// externalTar shells out to the system tar tool.
type externalTar struct{}

func (externalTar) extract(archive, destDir string) error {
	flag := "-xzf"
	if strings.HasSuffix(archive, ".xz") {
		flag = "-xJf"
	}
	out, err := exec.Command("tar", flag, archive, "-C", destDir).CombinedOutput()
	if err != nil {
		return &ExtractError{Archive: archive, Reason: "tar: " + strings.TrimSpace(string(out)), Err: err}
	}
	return nil
}

// stagedTar decompresses in-process (xz or gzip by extension) and then walks
// the tar stream, mirroring the external tool without depending on one.
type stagedTar struct{}

func (stagedTar) extract(archive, destDir string) error {
	f, err := os.Open(archive)
	if err != nil {
		return &ExtractError{Archive: archive, Reason: "open", Err: err}
	}
	defer f.Close()

	var decompressed io.Reader
	if strings.HasSuffix(archive, ".xz") {
		decompressed, err = xz.NewReader(f)
	} else {
		var zr *gzip.Reader
		zr, err = gzip.NewReader(f)
		if err == nil {
			defer zr.Close()
			decompressed = zr
		}
	}
	if err != nil {
		return &ExtractError{Archive: archive, Reason: "decompress", Err: err}
	}
	if err := untar(decompressed, destDir); err != nil {
		return &ExtractError{Archive: archive, Reason: "unpack", Err: err}
	}
	return nil
}

func untar(r io.Reader, destDir string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		default:
			// Hard links and special files do not occur in source
			// distributions; skip them rather than fail.
		}
	}
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// safeJoin rejects entry names that would escape destDir.
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", os.ErrInvalid
	}
	return target, nil
}
