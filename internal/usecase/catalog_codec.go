package usecase

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/i2y/apicatalog/internal/domain"
	"github.com/i2y/apicatalog/internal/schema"
)

type wireEndpoint struct {
	Path     string            `json:"Path"`
	Input    json.RawMessage   `json:"Input"`
	Output   json.RawMessage   `json:"Output"`
	FileName string            `json:"FileName"`
	Method   domain.HTTPMethod `json:"Method"`
}

type wireCatalog struct {
	ID          string              `json:"id"`
	RepoURL     string              `json:"repo_url"`
	Commit      string              `json:"commit"`
	Tag         string              `json:"tag_name"`
	CreatedAt   time.Time           `json:"created_at"`
	Endpoints   []wireEndpoint      `json:"data"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
}

// DecodeCatalog rebuilds a catalog from the payload of a stored record.
func DecodeCatalog(payload []byte) (domain.Catalog, error) {
	var w wireCatalog
	if err := json.Unmarshal(payload, &w); err != nil {
		return domain.Catalog{}, fmt.Errorf("failed to decode catalog: %w", err)
	}
	c := domain.Catalog{
		ID:          w.ID,
		RepoURL:     w.RepoURL,
		Commit:      w.Commit,
		Tag:         w.Tag,
		CreatedAt:   w.CreatedAt,
		Endpoints:   make([]domain.Endpoint, 0, len(w.Endpoints)),
		Diagnostics: w.Diagnostics,
	}
	for i, we := range w.Endpoints {
		ep := domain.Endpoint{Method: we.Method, Path: we.Path, SourceFile: we.FileName}
		if len(we.Input) > 0 {
			params, err := schema.DecodeFields(we.Input)
			if err != nil {
				return domain.Catalog{}, fmt.Errorf("failed to decode input of endpoint %d: %w", i, err)
			}
			ep.Params = params
		}
		ret, err := schema.DecodeNode(we.Output)
		if err != nil {
			return domain.Catalog{}, fmt.Errorf("failed to decode output of endpoint %d: %w", i, err)
		}
		ep.Return = ret
		c.Endpoints = append(c.Endpoints, ep)
	}
	return c, nil
}
