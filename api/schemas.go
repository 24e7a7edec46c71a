package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/garnizeh/studybuddy/pkg/errorx"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// request body schemas keyed by file name without extension
var schemas = mustLoadSchemas()

const maxJSONBody = 1 << 20

func mustLoadSchemas() map[string]*jsonschema.Schema {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		panic(fmt.Sprintf("read schemas: %v", err))
	}
	out := make(map[string]*jsonschema.Schema, len(entries))
	for _, e := range entries {
		b, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			panic(fmt.Sprintf("read schema %s: %v", e.Name(), err))
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(b, rs); err != nil {
			panic(fmt.Sprintf("compile schema %s: %v", e.Name(), err))
		}
		out[strings.TrimSuffix(e.Name(), ".json")] = rs
	}
	return out
}

// validateJSON checks data against the named schema.
func validateJSON(ctx context.Context, schema string, data []byte) error {
	rs, ok := schemas[schema]
	if !ok {
		return errorx.Newf(errorx.KindInternal, "unknown schema %q", schema)
	}
	if !json.Valid(data) {
		return errorx.Validation("invalid json")
	}
	verrs, err := rs.ValidateBytes(ctx, data)
	if err != nil {
		return errorx.Wrap(err, errorx.KindValidation, "invalid request")
	}
	if len(verrs) > 0 {
		msgs := make([]string, 0, len(verrs))
		for _, ke := range verrs {
			msgs = append(msgs, strings.TrimSpace(ke.PropertyPath+" "+ke.Message))
		}
		return errorx.Validation(strings.Join(msgs, "; "))
	}
	return nil
}

// decodeJSON reads the request body, validates it against schema and decodes it into dst.
func decodeJSON(r *http.Request, schema string, dst any) error {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody+1))
	if err != nil {
		return errorx.Wrap(err, errorx.KindValidation, "read body")
	}
	if len(b) > maxJSONBody {
		return errorx.Validation("request body too large")
	}
	return decodeBytes(r.Context(), b, schema, dst)
}

func decodeBytes(ctx context.Context, b []byte, schema string, dst any) error {
	if err := validateJSON(ctx, schema, b); err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return errorx.Wrap(err, errorx.KindValidation, "invalid request")
	}
	return nil
}
