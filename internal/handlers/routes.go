package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/ratelimit"
)

// plainTextBody documents a text/plain long URL body. It is optional at the
// schema level so an empty body reaches the handler and is answered with 400.
func plainTextBody() *huma.RequestBody {
	return &huma.RequestBody{
		Description: "The long URL",
		Required:    false,
		Content: map[string]*huma.MediaType{
			"text/plain": {Schema: &huma.Schema{Type: huma.TypeString}},
		},
	}
}

// RegisterRoutes registers the mapping CRUD and redirect operations.
func RegisterRoutes(api huma.API, mappings *MappingHandler, redirects *RedirectHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-mappings",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "List mappings",
		Tags:        []string{"Mappings"},
	}, mappings.ListMappings)

	huma.Register(api, huma.Operation{
		OperationID: "get-mapping",
		Method:      http.MethodGet,
		Path:        "/{shortToken}",
		Summary:     "Get mapping",
		Tags:        []string{"Mappings"},
	}, mappings.GetMapping)

	// Writes get a tighter per-route limit on top of the class defaults.
	huma.Register(api, huma.Operation{
		OperationID:   "create-mapping",
		Method:        http.MethodPost,
		Path:          "/",
		Summary:       "Create mapping",
		Description:   "Allocates a new short token for the plain-text long URL in the body.",
		Tags:          []string{"Mappings"},
		DefaultStatus: http.StatusCreated,
		RequestBody:   plainTextBody(),
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.Endpoint{
				Rules: []ratelimit.Rule{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 100},
					{Window: 24 * time.Hour, Max: 500},
				},
			},
		},
	}, mappings.CreateMapping)

	huma.Register(api, huma.Operation{
		OperationID: "update-mapping",
		Method:      http.MethodPut,
		Path:        "/{shortToken}",
		Summary:     "Update mapping",
		Tags:        []string{"Mappings"},
		RequestBody: plainTextBody(),
	}, mappings.UpdateMapping)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-mapping",
		Method:        http.MethodDelete,
		Path:          "/{shortToken}",
		Summary:       "Delete mapping",
		Tags:          []string{"Mappings"},
		DefaultStatus: http.StatusNoContent,
	}, mappings.DeleteMapping)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-all-mappings",
		Method:        http.MethodDelete,
		Path:          "/",
		Summary:       "Delete all mappings",
		Description:   "Deletes every mapping. Fails with 500 when there is nothing to delete.",
		Tags:          []string{"Mappings"},
		DefaultStatus: http.StatusNoContent,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.Endpoint{
				Rules: []ratelimit.Rule{{Window: time.Minute, Max: 2}},
			},
		},
	}, mappings.DeleteAllMappings)

	huma.Register(api, huma.Operation{
		OperationID:   "redirect",
		Method:        http.MethodGet,
		Path:          "/redirect/{shortToken}",
		Summary:       "Redirect to long URL",
		Tags:          []string{"Redirect"},
		DefaultStatus: http.StatusSeeOther,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.Endpoint{
				Rules: []ratelimit.Rule{{Window: time.Minute, Max: 1000}},
			},
		},
	}, redirects.Redirect)
}
