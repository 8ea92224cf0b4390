// internal/catalog/source.go
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	apperrors "scheme-assistant/internal/common/errors"
	"scheme-assistant/internal/common/logger"
	"scheme-assistant/internal/common/validation"
	"scheme-assistant/internal/models"
)

//go:embed schema.json
var documentSchemaJSON string

var documentSchema = validation.MustCompile(documentSchemaJSON)

// Source produces the raw catalog document: {"schemes": [...]}.
type Source interface {
	Name() string
	Document(ctx context.Context) ([]byte, error)
}

type document struct {
	Schemes []models.Scheme `json:"schemes"`
}

// Load reads, validates and indexes a catalog. Any failure is fatal for the
// caller: the process must not serve traffic without a catalog.
func Load(ctx context.Context, src Source, log logger.Logger) (*Catalog, error) {
	raw, err := src.Document(ctx)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(src.Name(), err)
	}

	c, err := Parse(src.Name(), raw)
	if err != nil {
		return nil, err
	}

	log.Info("catalog loaded", map[string]interface{}{
		"source":  src.Name(),
		"schemes": c.Len(),
	})
	return c, nil
}

// Parse validates a catalog document against the embedded schema and builds
// the catalog from it.
func Parse(source string, raw []byte) (*Catalog, error) {
	res, err := documentSchema.ValidateBytes(raw)
	if err != nil {
		return nil, apperrors.NewCatalogInvalidError(source, err.Error())
	}
	if err := res.Err(); err != nil {
		return nil, apperrors.NewCatalogInvalidError(source, err.Error()).
			WithMetadata("violations", len(res.Errors))
	}

	var doc document
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return nil, apperrors.NewCatalogInvalidError(source, fmt.Sprintf("decode: %v", err))
	}

	c, err := New(doc.Schemes)
	if err != nil {
		return nil, apperrors.NewCatalogInvalidError(source, err.Error())
	}
	return c, nil
}

// assemble wraps individually stored scheme objects into one document.
func assemble(objects []json.RawMessage) []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"schemes":[`)
	for i, o := range objects {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(o)
	}
	buf.WriteString(`]}`)
	return buf.Bytes()
}
