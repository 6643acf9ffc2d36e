package content

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"festadmin/internal/services"
)

//go:embed import.schema.json
var importSchemaJSON string

const importSchemaURL = "festadmin://import.schema.json"

var (
	importSchemaOnce sync.Once
	importSchema     *jsonschema.Schema
	importSchemaErr  error
)

func compiledImportSchema() (*jsonschema.Schema, error) {
	importSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(importSchemaURL, strings.NewReader(importSchemaJSON)); err != nil {
			importSchemaErr = fmt.Errorf("add import schema: %w", err)
			return
		}
		importSchema, importSchemaErr = compiler.Compile(importSchemaURL)
	})
	return importSchema, importSchemaErr
}

// ImportBatch is a validated import file: documents destined for one
// collection. Media fields are stored as given, legacy shapes included, so the
// migration sees exactly what the source system exported.
type ImportBatch struct {
	Collection string
	Documents  []map[string]any
}

// ReadImport decodes and schema-checks an import file. Schema violations are
// marked ErrValidation.
func ReadImport(r io.Reader) (*ImportBatch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, services.Wrap(services.ErrValidation, "content", "import", "file is not valid JSON", err)
	}
	schema, err := compiledImportSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(payload); err != nil {
		return nil, services.Wrap(services.ErrValidation, "content", "import", "file does not match the import schema", err)
	}

	var file struct {
		Collection string           `json:"collection"`
		Documents  []map[string]any `json:"documents"`
	}
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&file); err != nil {
		return nil, services.Wrap(services.ErrValidation, "content", "import", "decode documents", err)
	}
	return &ImportBatch{Collection: file.Collection, Documents: file.Documents}, nil
}

// Apply writes every document of the batch into repo. collection overrides the
// batch collection when non-empty. It stops at the first failed write and
// returns how many documents were stored.
func (b *ImportBatch) Apply(ctx context.Context, repo Repository, collection string) (int, error) {
	if b == nil {
		return 0, nil
	}
	if strings.TrimSpace(collection) == "" {
		collection = b.Collection
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return 0, services.Wrap(services.ErrValidation, "content", "import", "no collection in file; pass --collection", nil)
	}
	stored := 0
	for _, doc := range b.Documents {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		id, _ := doc["id"].(string)
		fields := make(map[string]any, len(doc))
		for k, v := range doc {
			if k != "id" {
				fields[k] = v
			}
		}
		if err := repo.Put(ctx, collection, id, fields); err != nil {
			return stored, fmt.Errorf("import %s/%s: %w", collection, id, err)
		}
		stored++
	}
	return stored, nil
}
