package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// HTTPMethod is the verb reported for an endpoint. Besides the constants below
// it may hold the raw source token of a generic mapping's method member.
type HTTPMethod string

const (
	MethodGet     HTTPMethod = "GET"
	MethodPost    HTTPMethod = "POST"
	MethodPut     HTTPMethod = "PUT"
	MethodPatch   HTTPMethod = "PATCH"
	MethodDelete  HTTPMethod = "DELETE"
	MethodUnknown HTTPMethod = "UNKNOWN"
)

// Params is an ordered parameter list, serialized as a JSON object.
type Params []SchemaField

// MarshalJSON keeps declaration order.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeFields(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Endpoint is one handler method exposed over HTTP.
type Endpoint struct {
	Method     HTTPMethod
	Path       string
	Params     Params
	Return     SchemaNode
	SourceFile string
}

// MarshalJSON writes the wire shape consumed by the scan pipeline.
func (e Endpoint) MarshalJSON() ([]byte, error) {
	params := e.Params
	if params == nil {
		params = Params{}
	}
	return json.Marshal(struct {
		Path     string     `json:"Path"`
		Input    Params     `json:"Input"`
		Output   SchemaNode `json:"Output"`
		FileName string     `json:"FileName"`
		Method   HTTPMethod `json:"Method"`
	}{
		Path:     e.Path,
		Input:    params,
		Output:   e.Return,
		FileName: e.SourceFile,
		Method:   e.Method,
	})
}

// Phase names the catalog build step a diagnostic was produced in.
type Phase string

const (
	PhaseLoad      Phase = "load"
	PhaseStructure Phase = "structure"
	PhaseExtract   Phase = "extract"
	PhaseScan      Phase = "scan"
)

// Diagnostic records a non-fatal problem found while building a catalog.
type Diagnostic struct {
	Unit    string `json:"unit"`
	Phase   Phase  `json:"phase"`
	Message string `json:"message"`
	// Skipped is set when the unit contributed nothing to the phase.
	Skipped bool `json:"skipped"`
}

// Catalog is the result of one scan.
type Catalog struct {
	ID          string       `json:"id"`
	RepoURL     string       `json:"repo_url"`
	Commit      string       `json:"commit"`
	Tag         string       `json:"tag_name"`
	CreatedAt   time.Time    `json:"created_at"`
	Endpoints   []Endpoint   `json:"data"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Complete reports whether every unit was processed without being skipped.
func (c Catalog) Complete() bool {
	for _, d := range c.Diagnostics {
		if d.Skipped {
			return false
		}
	}
	return true
}

// Envelope is the document delivered to the scan pipeline.
type Envelope struct {
	RepoURL string     `json:"repo_url"`
	Commit  string     `json:"commit"`
	Tag     string     `json:"tag_name"`
	Data    []Endpoint `json:"data"`
}

// Envelope returns the delivery document for the catalog.
func (c Catalog) Envelope() Envelope {
	data := c.Endpoints
	if data == nil {
		data = []Endpoint{}
	}
	return Envelope{RepoURL: c.RepoURL, Commit: c.Commit, Tag: c.Tag, Data: data}
}

// CatalogRecord is a stored catalog: its summary plus the delivered envelope.
type CatalogRecord struct {
	ID            string          `json:"id"`
	RepoURL       string          `json:"repo_url"`
	Commit        string          `json:"commit"`
	Tag           string          `json:"tag_name"`
	CreatedAt     time.Time       `json:"created_at"`
	EndpointCount int             `json:"endpoint_count"`
	Complete      bool            `json:"complete"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// Record returns the stored form of the catalog. The payload is the catalog's
// full JSON document.
func (c Catalog) Record() (CatalogRecord, error) {
	if c.Endpoints == nil {
		c.Endpoints = []Endpoint{}
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return CatalogRecord{}, err
	}
	return CatalogRecord{
		ID:            c.ID,
		RepoURL:       c.RepoURL,
		Commit:        c.Commit,
		Tag:           c.Tag,
		CreatedAt:     c.CreatedAt,
		EndpointCount: len(c.Endpoints),
		Complete:      c.Complete(),
		Payload:       payload,
	}, nil
}
