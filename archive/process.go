package archive

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ProcessFileFn rewrites one archive entry from r into w.
// Returning ErrUnchanged copies the entry verbatim instead.
type ProcessFileFn = func(name string, w io.Writer, r io.Reader) error

// ErrUnchanged signals that the entry should be copied as-is.
var ErrUnchanged = errors.New("entry unchanged")

type Stats struct {
	Processed int
	Copied    int
}

// ProcessZip reads a .zip archive from r and writes a new archive to w
// where every file entry has been passed through processFile. Entry
// headers (name, method, modification time, comments) are kept.
func ProcessZip(w io.Writer, r io.Reader, processFile ProcessFileFn) (Stats, error) {
	var stats Stats

	data, err := io.ReadAll(r)
	if err != nil {
		return stats, errors.Wrap(err, "failed to read data")
	}

	if len(data) == 0 {
		return stats, errors.New("no data")
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return stats, errors.Wrap(err, "failed to read data as .zip archive")
	}

	buf := bytes.Buffer{}
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})
	if err := zw.SetComment(zr.Comment); err != nil {
		return stats, errors.Wrap(err, "could not copy archive comment")
	}

	for _, meta := range zr.File {
		if meta.FileInfo().IsDir() {
			header := copyHeader(meta)
			if _, err := zw.CreateHeader(header); err != nil {
				return stats, errors.Wrapf(err, "could not create directory '%s' in new archive", meta.Name)
			}
			continue
		}

		changed, err := processEntry(zw, meta, processFile)
		if err != nil {
			return stats, errors.Wrapf(err, "failed to process file '%s'", meta.Name)
		}
		if changed {
			stats.Processed++
		} else {
			stats.Copied++
		}
	}

	err = zw.Close()
	if err != nil {
		return stats, errors.Wrap(err, "failed to close/flush resulting archive")
	}

	_, err = io.Copy(w, &buf)
	return stats, err
}

func processEntry(zw *zip.Writer, meta *zip.File, processFile ProcessFileFn) (bool, error) {
	content, err := readEntry(meta)
	if err != nil {
		return false, err
	}

	var out bytes.Buffer
	err = processFile(meta.Name, &out, bytes.NewReader(content))
	changed := true
	if errors.Is(err, ErrUnchanged) {
		changed = false
		out.Reset()
		out.Write(content)
	} else if err != nil {
		return false, err
	}

	fileWriter, err := zw.CreateHeader(copyHeader(meta))
	if err != nil {
		return false, errors.Wrap(err, "could not create file in new archive")
	}
	if _, err := io.Copy(fileWriter, &out); err != nil {
		return false, errors.Wrap(err, "could not write file to new archive")
	}
	return changed, nil
}

// copyHeader keeps the descriptive fields of an entry. Sizes, checksum
// and extra fields are recomputed by the writer.
func copyHeader(meta *zip.File) *zip.FileHeader {
	return &zip.FileHeader{
		Name:          meta.Name,
		Comment:       meta.Comment,
		NonUTF8:       meta.NonUTF8,
		Method:        meta.Method,
		Modified:      meta.Modified,
		ExternalAttrs: meta.ExternalAttrs,
	}
}

func readEntry(meta *zip.File) ([]byte, error) {
	fileReader, err := meta.Open()
	if err != nil {
		return nil, errors.Wrap(err, "could not open")
	}
	defer fileReader.Close()

	content, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, errors.Wrap(err, "could not read")
	}
	return content, nil
}

// HasExt reports whether name ends in ext, ignoring case.
func HasExt(name, ext string) bool {
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext))
}
