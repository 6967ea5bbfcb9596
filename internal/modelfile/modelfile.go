package modelfile

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

var (
	ErrSyntax        = errors.New("model file syntax error")
	ErrUnknownFormat = errors.New("unknown model file format")
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hmm", ".txt":
		return FormatText, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%s", path)
}

// Load reads a model file. A document without a name is named after the
// file's base name.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open model file")
	}
	defer f.Close()

	doc, err := Parse(f, format)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	if doc.Name == "" {
		base := filepath.Base(path)
		doc.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return doc, nil
}

func Parse(r io.Reader, format Format) (*Document, error) {
	switch format {
	case FormatText:
		return parseText(r)
	case FormatYAML, FormatJSON:
		// JSON is a subset of YAML.
		var doc Document
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return &Document{}, nil
			}
			return nil, errors.Wrap(ErrSyntax, err.Error())
		}
		return &doc, nil
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
}

func Marshal(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatText:
		var buf bytes.Buffer
		if err := writeText(&buf, doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
}

func Save(path string, doc *Document) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(doc, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create model directory")
	}
	return os.WriteFile(path, data, 0o644)
}
