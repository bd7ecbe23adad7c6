package jsonadapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
)

// CompressedSuffix marks a snappy compressed document file.
const CompressedSuffix = ".sz"

// Document is a whole graph held in memory.
type Document struct {
	Nodes []graph.Data `json:"nodes"`
	Edges []graph.Data `json:"edges"`
}

// Decode reads a JSON document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode graph document: %w", err)
	}
	for i, n := range doc.Nodes {
		if n.ID() == "" {
			return nil, graph.NewError("Decode").Context(fmt.Sprintf("node %d", i)).Cause(graph.ErrInvalidData).Err()
		}
	}
	for i, e := range doc.Edges {
		if e.ID() == "" || e.From() == "" || e.To() == "" {
			return nil, graph.NewError("Decode").Context(fmt.Sprintf("edge %d", i)).Cause(graph.ErrInvalidData).Err()
		}
	}
	return &doc, nil
}

// LoadFile reads a document from path. Files ending in ".sz" are snappy
// compressed blocks.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if strings.HasSuffix(path, CompressedSuffix) {
		data, err = snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", path, err)
		}
	}
	return Decode(bytes.NewReader(data))
}

// WriteFile stores doc at path, compressing it when path ends in ".sz".
func WriteFile(path string, doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode graph document: %w", err)
	}
	if strings.HasSuffix(path, CompressedSuffix) {
		data = snappy.Encode(nil, data)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
