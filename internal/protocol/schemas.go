package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var requestSchemaFiles = map[string]string{
	TypeHello:    "hello.schema.json",
	TypeTile:     "tile.schema.json",
	TypeSetTile:  "set_tile.schema.json",
	TypeRegion:   "region.schema.json",
	TypePathfind: "pathfind.schema.json",
	TypeChunk:    "chunk.schema.json",

	TypeOpenBarrier: "open_barrier.schema.json",
	TypeOpenChest:   "open_chest.schema.json",
}

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func compileSchemas() {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	out := make(map[string]*jsonschema.Schema, len(requestSchemaFiles))
	for typ, name := range requestSchemaFiles {
		b, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			schemasErr = err
			return
		}
		url := "mem://protocol/" + name
		if err := c.AddResource(url, bytes.NewReader(b)); err != nil {
			schemasErr = fmt.Errorf("add %s: %w", name, err)
			return
		}
		s, err := c.Compile(url)
		if err != nil {
			schemasErr = fmt.Errorf("compile %s: %w", name, err)
			return
		}
		out[typ] = s
	}
	schemas = out
}

// ValidateRequest checks raw against the schema registered for typ.
// Unknown request types are rejected.
func ValidateRequest(typ string, raw []byte) error {
	schemasOnce.Do(compileSchemas)
	if schemasErr != nil {
		return schemasErr
	}
	s, ok := schemas[typ]
	if !ok {
		return fmt.Errorf("unknown message type %q", typ)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return s.Validate(v)
}

// Decode validates raw and unmarshals it into dst.
func Decode(typ string, raw []byte, dst any) error {
	if err := ValidateRequest(typ, raw); err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
