// Package authz talks to the deployment's authorization service. The core
// treats authorization as a boolean-returning capability check; everything
// about policy lives on the other side of this interface.
package authz

import (
	"context"
)

// Permissions this service asks about.
const (
	PermissionIngestData   = "ingest:data"
	PermissionQueryData    = "query:data"
	PermissionDownloadData = "download:data"
	PermissionDeleteData   = "delete:data"
)

// Resource identifies the scope a permission applies to: either everything,
// or one (project, dataset, data type) combination. Empty fields mean the
// object is unscoped on that axis.
type Resource struct {
	Everything bool   `json:"everything,omitempty"`
	Project    string `json:"project,omitempty"`
	Dataset    string `json:"dataset,omitempty"`
	DataType   string `json:"data_type,omitempty"`
}

// EverythingResource is the blanket scope covering all resources.
func EverythingResource() Resource {
	return Resource{Everything: true}
}

// Service answers capability queries. Implementations must not interpret
// policy locally beyond forwarding the query and returning the verdicts.
type Service interface {
	// CheckEverything reports whether the bearer of token holds permission
	// on everything.
	CheckEverything(ctx context.Context, token, permission string) (bool, error)
	// CheckObjects evaluates permission for each resource; the result is a
	// parallel boolean slice.
	CheckObjects(ctx context.Context, token string, resources []Resource, permission string) ([]bool, error)
}

// AllowAll grants every permission. Used when authorization is disabled in
// configuration (development and tests).
type AllowAll struct{}

func (AllowAll) CheckEverything(context.Context, string, string) (bool, error) {
	return true, nil
}

func (AllowAll) CheckObjects(_ context.Context, _ string, resources []Resource, _ string) ([]bool, error) {
	verdicts := make([]bool, len(resources))
	for i := range verdicts {
		verdicts[i] = true
	}
	return verdicts, nil
}
