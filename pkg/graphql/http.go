package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
)

// Request is the JSON body accepted on the GraphQL route.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// Response carries the resolved scene data and any resolver errors.
type Response struct {
	Data   any             `json:"data,omitempty"`
	Errors []ResponseError `json:"errors,omitempty"`
}

// ResponseError is one failed field. Path names the field within the query.
type ResponseError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// Handler executes viewer queries and mutations posted as JSON.
type Handler struct {
	schema graphql.Schema
	logger logging.Logger
}

func NewHandler(schema graphql.Schema, logger logging.Logger) *Handler {
	return &Handler{
		schema: schema,
		logger: logging.OrNop(logger).With(logging.Component("graphql")),
	}
}

// ServeHTTP answers 200 whenever the request parsed; resolver failures are
// reported in the errors list next to partial data.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	result := Execute(r.Context(), h.schema, req)
	resp := Response{Data: result.Data}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, ResponseError{Message: e.Message, Path: e.Path})
	}
	if len(resp.Errors) > 0 {
		h.logger.Debug("graphql errors",
			logging.Operation(req.OperationName),
			logging.Count(len(resp.Errors)),
			logging.String("first", resp.Errors[0].Message))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Warn("writing graphql response", logging.Error(err))
	}
}
