package jobs

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaJobMessage validates the body of a queued job message.
const schemaJobMessage = "job_message"

var compiledSchemas = mustCompileSchemas()

func mustCompileSchemas() map[string]*jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	files, err := fs.Glob(schemaFS, "schemas/*.json")
	if err != nil {
		panic(err)
	}
	for _, p := range files {
		f, err := schemaFS.Open(p)
		if err != nil {
			panic(err)
		}
		if err := compiler.AddResource(p, f); err != nil {
			panic(fmt.Sprintf("add schema %s: %v", p, err))
		}
		f.Close()
	}

	out := make(map[string]*jsonschema.Schema, len(files))
	for _, p := range files {
		schema, err := compiler.Compile(p)
		if err != nil {
			panic(fmt.Sprintf("compile schema %s: %v", p, err))
		}
		out[strings.TrimSuffix(path.Base(p), ".json")] = schema
	}
	return out
}

// ValidatePayload checks a job payload against its pipeline's schema. A
// file_path must be relative and stay inside the importer's import dir.
func ValidatePayload(pipeline string, payload []byte) error {
	if pipeline == schemaJobMessage {
		return fmt.Errorf("%w: %s", ErrUnknownPipeline, pipeline)
	}
	if err := validate(pipeline, payload); err != nil {
		return err
	}
	var src struct {
		FilePath string `json:"file_path"`
	}
	if err := json.Unmarshal(payload, &src); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if src.FilePath != "" && !filepath.IsLocal(src.FilePath) {
		return fmt.Errorf("%w: file_path %q is outside the import dir", ErrInvalidPayload, src.FilePath)
	}
	return nil
}

func validate(name string, body []byte) error {
	schema, ok := compiledSchemas[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPipeline, name)
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("%w: not valid JSON: %v", ErrInvalidPayload, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
