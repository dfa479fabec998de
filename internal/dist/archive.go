// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dist

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ulikunitz/xz"
)

// Format is the archive format of a source distribution.
type Format string

const (
	GzTar Format = "gztar"
	XzTar Format = "xztar"
)

// ParseFormat validates s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case GzTar, XzTar:
		return f, nil
	case "":
		return GzTar, nil
	}
	return "", fmt.Errorf("unknown archive format %q (want gztar or xztar)", s)
}

// Ext returns the file extension of f.
func (f Format) Ext() string {
	if f == XzTar {
		return ".tar.xz"
	}
	return ".tar.gz"
}

// archive receives files under slash-separated member names.
type archive interface {
	addFile(name, path string) error
	addBytes(name string, data []byte) error
	Close() error
}

type tarArchive struct {
	f    *os.File
	comp io.WriteCloser
	tw   *tar.Writer
}

func createTar(path string, format Format) (*tarArchive, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	var comp io.WriteCloser
	if format == XzTar {
		comp, err = xz.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, err
		}
	} else {
		comp = gzip.NewWriter(f)
	}
	return &tarArchive{f: f, comp: comp, tw: tar.NewWriter(comp)}, nil
}

func (a *tarArchive) addFile(name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	if err := a.tw.WriteHeader(hdr); err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(a.tw, file)
	return err
}

func (a *tarArchive) addBytes(name string, data []byte) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    0o644,
		Size:    int64(len(data)),
		ModTime: time.Now(),
	}
	if err := a.tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := a.tw.Write(data)
	return err
}

func (a *tarArchive) Close() error {
	return errors.Join(a.tw.Close(), a.comp.Close(), a.f.Close())
}

type zipArchive struct {
	f *os.File
	w *zip.Writer
}

func createZip(path string) (*zipArchive, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &zipArchive{f: f, w: zip.NewWriter(f)}, nil
}

func (a *zipArchive) addFile(name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	writer, err := a.w.CreateHeader(header)
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(writer, file)
	return err
}

func (a *zipArchive) addBytes(name string, data []byte) error {
	writer, err := a.w.Create(name)
	if err != nil {
		return err
	}
	_, err = writer.Write(data)
	return err
}

func (a *zipArchive) Close() error {
	return errors.Join(a.w.Close(), a.f.Close())
}

// memberName turns an install path into a relative archive member name.
func memberName(path string) string {
	path = path[len(filepath.VolumeName(path)):]
	name := filepath.ToSlash(path)
	for len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}
	return name
}
