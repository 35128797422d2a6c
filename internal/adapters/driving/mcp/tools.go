package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driving"
)

// Find limits.
const (
	defaultFindLimit = 10
	maxFindLimit     = 100
)

// ErrConversionUnavailable is returned by conversion tools when no
// conversion service was configured.
var ErrConversionUnavailable = errors.New("mcp: conversion is not available")

// SectionsInput is the input schema for the list_sections tool.
type SectionsInput struct {
	Section string `json:"section,omitempty" jsonschema:"dotted section path, empty for the top level"`
}

// CollectionsInput is the input schema for the list_collections tool.
type CollectionsInput struct {
	Section string `json:"section,omitempty" jsonschema:"dotted section path, empty for the whole database"`
}

// NamesOutput is a list of section or collection names.
type NamesOutput struct {
	Names []string `json:"names"`
	Count int      `json:"count"`
}

// FindInput is the input schema for the find tool.
type FindInput struct {
	Collection string         `json:"collection" jsonschema:"full collection name, e.g. Polytopes.Lattice.SmoothReflexive"`
	Filter     map[string]any `json:"filter,omitempty" jsonschema:"MongoDB filter document"`
	Sort       string         `json:"sort,omitempty" jsonschema:"comma separated fields, prefix with - for descending"`
	Projection map[string]any `json:"projection,omitempty" jsonschema:"MongoDB projection document"`
	Skip       int64          `json:"skip,omitempty" jsonschema:"number of documents to skip"`
	Limit      int64          `json:"limit,omitempty" jsonschema:"maximum number of documents to return (default 10, max 100)"`
}

// FindOutput is the output schema for the find tool.
type FindOutput struct {
	Documents []map[string]any `json:"documents"`
	Count     int              `json:"count"`
}

// GetDocumentInput is the input schema for the get_document tool.
type GetDocumentInput struct {
	Collection string `json:"collection" jsonschema:"full collection name"`
	ID         string `json:"id" jsonschema:"document _id"`
}

// GetDocumentOutput is the output schema for the get_document tool.
type GetDocumentOutput struct {
	Document map[string]any `json:"document"`
}

// ConvertFieldInput is the input schema for the convert_field tool.
type ConvertFieldInput struct {
	Collection string `json:"collection" jsonschema:"full collection name"`
	ID         string `json:"id" jsonschema:"document _id"`
	Field      string `json:"field" jsonschema:"property to convert, e.g. VERTICES"`
	Type       string `json:"type,omitempty" jsonschema:"type signature overriding the stored one, e.g. Matrix<Rational>"`
	Affine     bool   `json:"affine,omitempty" jsonschema:"drop the homogenizing first coordinate"`
}

// ConvertFieldOutput is the output schema for the convert_field tool.
type ConvertFieldOutput struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Value any    `json:"value"`
}

// ParseTypeInput is the input schema for the parse_type tool.
type ParseTypeInput struct {
	Signature string `json:"signature" jsonschema:"type signature, e.g. Map<Int, Set<Int>>"`
}

// ParseTypeOutput is the output schema for the parse_type tool.
type ParseTypeOutput struct {
	Canonical string   `json:"canonical"`
	Qualified string   `json:"qualified"`
	Kind      string   `json:"kind"`
	Args      []string `json:"args,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_sections",
		Description: "List the subsections of a polyDB section",
	}, s.handleListSections)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_collections",
		Description: "List the collections below a polyDB section",
	}, s.handleListCollections)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find",
		Description: "Query documents of a collection with a MongoDB filter",
	}, s.handleFind)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Fetch a single document by its _id",
	}, s.handleGetDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "convert_field",
		Description: "Convert a document property into a typed value using its type signature",
	}, s.handleConvertField)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "parse_type",
		Description: "Parse and describe a type signature",
	}, s.handleParseType)
}

func (s *Server) handleListSections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SectionsInput,
) (*mcp.CallToolResult, NamesOutput, error) {
	names, err := s.ports.Catalog.Subsections(ctx, input.Section)
	if err != nil {
		return nil, NamesOutput{}, err
	}
	return nil, namesOutput(names), nil
}

func (s *Server) handleListCollections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CollectionsInput,
) (*mcp.CallToolResult, NamesOutput, error) {
	names, err := s.ports.Catalog.Collections(ctx, input.Section)
	if err != nil {
		return nil, NamesOutput{}, err
	}
	return nil, namesOutput(names), nil
}

func namesOutput(names []string) NamesOutput {
	if names == nil {
		names = []string{}
	}
	return NamesOutput{Names: names, Count: len(names)}
}

// handleFind handles the find tool invocation.
func (s *Server) handleFind(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindInput,
) (*mcp.CallToolResult, FindOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultFindLimit
	}
	if limit > maxFindLimit {
		limit = maxFindLimit
	}

	sort, err := domain.ParseSort(input.Sort)
	if err != nil {
		return nil, FindOutput{}, err
	}
	opts := domain.FindOptions{
		Filter:     input.Filter,
		Sort:       sort,
		Projection: input.Projection,
		Skip:       input.Skip,
		Limit:      limit,
	}
	docs, err := s.ports.Collection.Find(ctx, input.Collection, opts)
	if err != nil {
		return nil, FindOutput{}, err
	}

	output := FindOutput{
		Documents: make([]map[string]any, len(docs)),
		Count:     len(docs),
	}
	for i, d := range docs {
		output.Documents[i] = d
	}
	return nil, output, nil
}

func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDocumentInput,
) (*mcp.CallToolResult, GetDocumentOutput, error) {
	doc, err := s.ports.Collection.Get(ctx, input.Collection, input.ID)
	if err != nil {
		return nil, GetDocumentOutput{}, err
	}
	return nil, GetDocumentOutput{Document: doc}, nil
}

func (s *Server) handleConvertField(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConvertFieldInput,
) (*mcp.CallToolResult, ConvertFieldOutput, error) {
	if s.ports.Conversion == nil {
		return nil, ConvertFieldOutput{}, ErrConversionUnavailable
	}
	out, err := s.ports.Conversion.ConvertField(ctx, input.Collection, input.ID, input.Field,
		driving.ConvertOptions{Signature: input.Type, Affine: input.Affine})
	if err != nil {
		return nil, ConvertFieldOutput{}, err
	}
	return nil, ConvertFieldOutput{
		Type:  out.Signature,
		Text:  fmt.Sprint(out.Value),
		Value: out.Value,
	}, nil
}

func (s *Server) handleParseType(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ParseTypeInput,
) (*mcp.CallToolResult, ParseTypeOutput, error) {
	if s.ports.Conversion == nil {
		return nil, ParseTypeOutput{}, ErrConversionUnavailable
	}
	info, err := s.ports.Conversion.ParseType(input.Signature)
	if err != nil {
		return nil, ParseTypeOutput{}, err
	}
	out := ParseTypeOutput{
		Canonical: info.Canonical,
		Qualified: info.Qualified,
		Kind:      info.Kind,
	}
	for _, a := range info.Args {
		out.Args = append(out.Args, a.Canonical)
	}
	return nil, out, nil
}
