package api

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes() {
	m.app.Get("/health", m.healthHandler)

	m.app.Post("/graphql", m.graphqlPost)
	m.app.Get("/graphql", m.graphqlGet)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	resp := storeHealth(c.UserContext(), m.taskPort)
	if resp.Status != StatusHealthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

// graphqlPost handles POST /graphql with a JSON body.
func (m *APIModule) graphqlPost(c *fiber.Ctx) error {
	var req GraphQLRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Request body must be a JSON object with a query",
		})
	}
	return m.execute(c, req)
}

// graphqlGet handles GET /graphql?query=...&variables=...
func (m *APIModule) graphqlGet(c *fiber.Ctx) error {
	req := GraphQLRequest{
		Query:         c.Query("query"),
		OperationName: c.Query("operationName"),
	}
	if raw := c.Query("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_request",
				Message: "variables must be a JSON object",
			})
		}
	}
	if op := operationType(req.Query, req.OperationName); op != "" && op != ast.OperationTypeQuery {
		c.Set(fiber.HeaderAllow, fiber.MethodPost)
		return c.Status(fiber.StatusMethodNotAllowed).JSON(ErrorResponse{
			Error:   "method_not_allowed",
			Message: "Only queries can be sent with GET; use POST for " + op + " operations",
		})
	}
	return m.execute(c, req)
}

// operationType returns the type of the operation that would run for query
// and operationName. It returns "" when the document does not parse or the
// operation cannot be selected; execution reports those errors.
func operationType(query, operationName string) string {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return ""
	}

	var ops []*ast.OperationDefinition
	for _, def := range doc.Definitions {
		if op, ok := def.(*ast.OperationDefinition); ok {
			ops = append(ops, op)
		}
	}

	if operationName == "" {
		if len(ops) == 1 {
			return ops[0].Operation
		}
		return ""
	}
	for _, op := range ops {
		if op.Name != nil && op.Name.Value == operationName {
			return op.Operation
		}
	}
	return ""
}

// execute runs a GraphQL request. Resolver failures are reported in the
// errors array with HTTP 200.
func (m *APIModule) execute(c *fiber.Ctx, req GraphQLRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "query is required",
		})
	}

	result := graphql.Do(graphql.Params{
		Schema:         m.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        c.UserContext(),
	})
	if result.HasErrors() {
		m.logger.Debug("GraphQL request returned errors",
			"request_id", c.Locals("requestid"),
			"operation", req.OperationName,
			"errors", len(result.Errors))
	}
	return c.JSON(result)
}
