package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	moveSchema := compile("move.schema.json")
	eventsSchema := compile("events.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "observer_name":"walker",
	  "capabilities":{"max_queue":8}
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "observer_id":"O1",
	  "world_params":{
	    "tick_rate_hz":10,
	    "seed":1337,
	    "tile_extent":10,
	    "generation_distance":2,
	    "hide_distance":40,
	    "origin":[0,0,0]
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var move any
	_ = json.Unmarshal([]byte(`{
	  "type":"MOVE",
	  "protocol_version":"1.0",
	  "pos":[9.0,0.0,-1.5]
	}`), &move)
	validate(moveSchema, move)

	var events any
	_ = json.Unmarshal([]byte(`{
	  "type":"EVENTS",
	  "protocol_version":"1.0",
	  "tick":42,
	  "next_cursor":3,
	  "events":[
	    {"cursor":1,"event":{"tick":42,"type":"TILE_PLACED","tile":[1,0],"variant":"ground_plain","pos":[10,0,0]}},
	    {"cursor":2,"event":{"tick":42,"type":"OBJECT_PLACED","tile":[1,0],"item":"rock_small","pos":[10.4,0.5,-2.1],"yaw":211.7}}
	  ]
	}`), &events)
	validate(eventsSchema, events)
}

func TestSchemas_RejectBadSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	var move any
	_ = json.Unmarshal([]byte(`{"type":"MOVE","protocol_version":"1.0","pos":[1,2]}`), &move)
	if err := compile("move.schema.json").Validate(move); err == nil {
		t.Fatalf("expected 2-component pos rejected")
	}

	var ev any
	_ = json.Unmarshal([]byte(`{
	  "type":"EVENTS","protocol_version":"1.0","tick":0,"next_cursor":1,
	  "events":[{"cursor":1,"event":{"tick":0,"type":"TILE_EXPLODED","tile":[0,0],"pos":[0,0,0]}}]
	}`), &ev)
	if err := compile("events.schema.json").Validate(ev); err == nil {
		t.Fatalf("expected unknown event type rejected")
	}
}
