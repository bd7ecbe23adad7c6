package shaper

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-graphviewer/pkg/colour"
)

// Scene is one rendered frame.
type Scene struct {
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Scale  float64        `json:"scale"`
	Nodes  []NodeVisual   `json:"nodes"`
	Edges  []EdgeVisual   `json:"edges"`
	Legend []colour.Entry `json:"legend,omitempty"`
}

// Render renders nodes before edges, so edge endpoints use the current
// display positions.
func Render(nodes *NodeShaper, edges *EdgeShaper) Scene {
	sc := Scene{Nodes: nodes.Render(), Edges: edges.Render()}
	sc.Legend = nodes.Mapper().Legend()
	return sc
}

// WriteScene encodes sc as JSON, optionally as a snappy block.
func WriteScene(w io.Writer, sc Scene, compress bool) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if compress {
		data = snappy.Encode(nil, data)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}

// ReadScene decodes a scene written by WriteScene.
func ReadScene(r io.Reader, compressed bool) (Scene, error) {
	var sc Scene
	data, err := io.ReadAll(r)
	if err != nil {
		return sc, fmt.Errorf("read scene: %w", err)
	}
	if compressed {
		if data, err = snappy.Decode(nil, data); err != nil {
			return sc, fmt.Errorf("decompress scene: %w", err)
		}
	}
	if err := json.Unmarshal(data, &sc); err != nil {
		return sc, fmt.Errorf("decode scene: %w", err)
	}
	return sc, nil
}
