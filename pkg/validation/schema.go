package validation

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"
)

// Schema names a request payload shape.
type Schema string

const (
	SchemaLogin          Schema = "login"
	SchemaChangePassword Schema = "change_password"
	SchemaResetPassword  Schema = "reset_password"
	SchemaDepartment     Schema = "department"
	SchemaEmployeeCreate Schema = "employee_create"
	SchemaEmployeeUpdate Schema = "employee_update"
	SchemaComputerCreate Schema = "computer_create"
	SchemaComputerUpdate Schema = "computer_update"
	SchemaHistory        Schema = "history"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

var (
	loadOnce sync.Once
	compiled map[Schema]*jsonschema.Schema
	loadErr  error
)

func loadSchemas() (map[Schema]*jsonschema.Schema, error) {
	loadOnce.Do(func() {
		entries, err := schemaFiles.ReadDir("schemas")
		if err != nil {
			loadErr = fmt.Errorf("read schemas: %w", err)
			return
		}

		out := make(map[Schema]*jsonschema.Schema, len(entries))
		for _, entry := range entries {
			data, err := schemaFiles.ReadFile("schemas/" + entry.Name())
			if err != nil {
				loadErr = fmt.Errorf("read schema %s: %w", entry.Name(), err)
				return
			}
			rs := &jsonschema.Schema{}
			if err := json.Unmarshal(data, rs); err != nil {
				loadErr = fmt.Errorf("compile schema %s: %w", entry.Name(), err)
				return
			}
			out[Schema(strings.TrimSuffix(entry.Name(), ".json"))] = rs
		}
		compiled = out
	})
	return compiled, loadErr
}

// Payload checks data against the named schema. It returns one message per
// violation, sorted, or an error when data is not JSON or the schema is
// unknown.
func Payload(ctx context.Context, name Schema, data []byte) ([]string, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	rs, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema: %s", name)
	}

	keyErrs, err := rs.ValidateBytes(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	messages := make([]string, 0, len(keyErrs))
	for _, ke := range keyErrs {
		field := strings.TrimPrefix(ke.PropertyPath, "/")
		if field == "" {
			messages = append(messages, ke.Message)
			continue
		}
		messages = append(messages, field+": "+ke.Message)
	}
	sort.Strings(messages)
	return messages, nil
}
