// Package artifact assembles and validates the JSON record written per document.
package artifact

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Open-AIP/OpenAIP/constants"
	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/metadata"
)

//go:embed schema.json
var schemaJSON []byte

// aipNamespace seeds content-derived document ids.
var aipNamespace = uuid.MustParse("6f1b8f8e-4a7c-5d0e-9b1a-3c2d4e5f6a7b")

type SourceFile struct {
	Path        string `json:"path,omitempty"`
	ContentHash string `json:"content_hash,omitempty"`
}

// Artifact is the root document written to disk, the DB and the gRPC surface.
type Artifact struct {
	SchemaVersion string                  `json:"schema_version"`
	AIPID         uuid.UUID               `json:"aip_id"`
	SourceFile    SourceFile              `json:"source_file"`
	Scope         constants.Scope         `json:"scope,omitempty"`
	Document      entity.DocumentMetadata `json:"document"`
	Totals        []entity.TotalRecord    `json:"totals"`
	Warnings      []entity.Warning        `json:"warnings"`
	Quality       entity.Quality          `json:"quality"`
}

type Options struct {
	SourcePath  string
	ContentHash string
	// AIPID overrides the derived id.
	AIPID uuid.UUID
}

// IDForHash derives a stable document id from the file content hash, so the
// same PDF always maps to the same aip_id.
func IDForHash(contentHash string) uuid.UUID {
	if contentHash == "" {
		return uuid.New()
	}
	return uuid.NewSHA1(aipNamespace, []byte(contentHash))
}

func Build(res metadata.Result, opts Options) Artifact {
	id := opts.AIPID
	if id == uuid.Nil {
		id = IDForHash(opts.ContentHash)
	}
	a := Artifact{
		SchemaVersion: constants.SchemaVersion,
		AIPID:         id,
		SourceFile:    SourceFile{Path: opts.SourcePath, ContentHash: opts.ContentHash},
		Scope:         res.Scope,
		Document:      res.Metadata,
		Totals:        res.Totals,
		Warnings:      res.Warnings,
		Quality:       res.Quality,
	}
	if a.Totals == nil {
		a.Totals = []entity.TotalRecord{}
	}
	if a.Warnings == nil {
		a.Warnings = []entity.Warning{}
	}
	return a
}

// Marshal renders the artifact as indented JSON.
func (a Artifact) Marshal() ([]byte, error) {
	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal artifact: %w", err)
	}
	return b, nil
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("schema.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// Validate checks serialized artifact JSON against the embedded schema.
func Validate(data []byte) error {
	s, err := compiled()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return common.NewAppError(common.CodeSchemaInvalid, "artifact is not valid json", err)
	}
	if err := s.Validate(v); err != nil {
		return common.NewAppError(common.CodeSchemaInvalid, "artifact does not match schema", err)
	}
	return nil
}

// MarshalValid marshals and validates in one step.
func (a Artifact) MarshalValid() ([]byte, error) {
	b, err := a.Marshal()
	if err != nil {
		return nil, err
	}
	if err := Validate(b); err != nil {
		return nil, err
	}
	return b, nil
}
