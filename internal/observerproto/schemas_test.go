package observerproto_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"voxelsea.ai/internal/observerproto"
)

func compile(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	p := filepath.Join("..", "..", "schemas", name)
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

// asJSON round-trips v so the schema sees what goes on the wire.
func asJSON(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestSchemas_ValidateMessages(t *testing.T) {
	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(asJSON(t, v)); err != nil {
			t.Fatalf("validate %T: %v", v, err)
		}
	}

	validate(compile(t, "observer_subscribe.schema.json"), observerproto.SubscribeMsg{
		Type:            observerproto.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
		Region:          &observerproto.Region{Min: [3]int{0, 0, 0}, Size: [3]int{64, 32, 64}},
		MaxRegions:      100,
	})
	validate(compile(t, "observer_input.schema.json"), observerproto.InputMsg{
		Type:            observerproto.TypeInput,
		ProtocolVersion: observerproto.Version,
		Key:             "space",
		Press:           true,
		Shift:           true,
	})
	validate(compile(t, "observer_bootstrap.schema.json"), observerproto.BootstrapResponse{
		ProtocolVersion: observerproto.Version,
		Level:           "Demo",
		Frame:           12,
		GridParams:      observerproto.GridParams{Size: 64, FrameRateHz: 60, TicksPerFrame: 10, TickSize: 1. / 600, Seed: -3},
		Meshes:          []string{"cube", "craft"},
	})
	validate(compile(t, "observer_tiles.schema.json"), observerproto.TilesMsg{
		Type:            observerproto.TypeTiles,
		ProtocolVersion: observerproto.Version,
		Frame:           3,
		Region:          observerproto.Region{Size: [3]int{64, 64, 64}},
		Tiles: []observerproto.TileRegion{
			{Min: [3]int{0, 0, 0}, Size: [3]int{32, 32, 32}, HP: 7, Color: [3]int{15, 10, 0}},
			{Min: [3]int{32, 0, 0}, Size: [3]int{1, 1, 1}, HP: 1, Color: [3]int{0, 24, 15}, Shape: 28},
		},
	})
	validate(compile(t, "observer_frame.schema.json"), observerproto.FrameMsg{
		Type:            observerproto.TypeFrame,
		ProtocolVersion: observerproto.Version,
		Frame:           3,
		Items: []observerproto.DrawItem{
			{Kind: "mesh", Mesh: "craft", Pos: [3]float64{1, 2, 3}, Quat: [4]float64{1, 0, 0, 0}},
			{Kind: "ball", Pos: [3]float64{1, 2, 3}, Quat: [4]float64{1, 0, 0, 0}, Radius: .5},
		},
		Effects: []observerproto.Effect{{Min: [3]int{4, 4, 4}, Size: 1, Age: 2}},
		Edits:   []observerproto.TileEdit{{Pos: [3]int{4, 4, 4}, HP: 0, Color: [3]int{0, 0, 0}}},
		Stats:   observerproto.FrameStats{Islands: 1, Sprites: 2, Voxels: 30},
	})
}

func TestSchemas_RejectMalformed(t *testing.T) {
	cases := []struct {
		schema string
		doc    string
	}{
		{"observer_subscribe.schema.json", `{"type":"HELLO","protocol_version":"0.1"}`},
		{"observer_subscribe.schema.json", `{"type":"SUBSCRIBE","protocol_version":"0.1","region":{"min":[0,0],"size":[1,1,1]}}`},
		{"observer_input.schema.json", `{"type":"INPUT","protocol_version":"0.1","key":"","press":true}`},
		{"observer_tiles.schema.json", `{"type":"TILES","protocol_version":"0.1","frame":0,"region":{"min":[0,0,0],"size":[1,1,1]},"tiles":[{"min":[0,0,0],"size":[1,1,1],"hp":0,"color":[0,0,0]}]}`},
		{"observer_frame.schema.json", `{"type":"FRAME","protocol_version":"0.1","frame":0,"items":[{"kind":"laser","pos":[0,0,0],"quat":[1,0,0,0]}],"effects":[],"stats":{}}`},
	}
	for _, c := range cases {
		var doc any
		if err := json.Unmarshal([]byte(c.doc), &doc); err != nil {
			t.Fatalf("bad fixture %s: %v", c.doc, err)
		}
		if err := compile(t, c.schema).Validate(doc); err == nil {
			t.Fatalf("%s accepted %s", c.schema, c.doc)
		}
	}
}
