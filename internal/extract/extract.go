// Package extract reads the text a cipher run works on from .txt and .json
// files.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrUnsupportedFormat is returned for suffixes other than .txt and .json.
// PDF input is recognised but not extracted.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// Encoding reports how a text source was decoded.
type Encoding string

const (
	EncodingUTF8   Encoding = "utf-8"
	EncodingLatin1 Encoding = "latin-1"
)

// Document is the text of one source file.
type Document struct {
	Path     string
	Text     string
	Encoding Encoding
}

// File reads path and returns its text according to the file suffix.
func File(path string) (Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", "":
	case ".json":
	case ".pdf":
		return Document{}, fmt.Errorf("%s: %w: pdf extraction is not available", path, ErrUnsupportedFormat)
	default:
		return Document{}, fmt.Errorf("%s: %w: %q", path, ErrUnsupportedFormat, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	if ext == ".json" {
		text, err := JSON(data)
		if err != nil {
			return Document{}, fmt.Errorf("parse %s: %w", path, err)
		}
		return Document{Path: path, Text: text, Encoding: EncodingUTF8}, nil
	}
	text, enc, err := Decode(data)
	if err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return Document{Path: path, Text: text, Encoding: enc}, nil
}

// Text is File without the metadata.
func Text(path string) (string, error) {
	doc, err := File(path)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}

// Decode returns data as UTF-8 text. Bytes that are not valid UTF-8 are
// decoded as ISO-8859-1, which maps every byte to a rune.
func Decode(data []byte) (string, Encoding, error) {
	if utf8.Valid(data) {
		return string(data), EncodingUTF8, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", err
	}
	return string(decoded), EncodingLatin1, nil
}

// JSON parses data and re-serialises it compactly so that every string,
// key and number in the document becomes part of the text.
func JSON(data []byte) (string, error) {
	var value any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
