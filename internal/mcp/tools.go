// ABOUTME: MCP tool definitions and registration for the flowscope server
// ABOUTME: Declares JSON schemas for the six explorer tools
package mcp

import (
	"github.com/harper/flowscope/internal/core"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func rangeSchema(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": desc,
		"items":       map[string]interface{}{"type": "number"},
		"minItems":    2,
		"maxItems":    2,
	}
}

var componentSchema = map[string]interface{}{
	"type":        "string",
	"description": "Physical variable",
	"enum":        []string{"p", "OH", "Mach"},
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, explorer *core.Explorer) *Handlers {
	handlers := NewHandlers(explorer)

	server.AddTool(mcp.Tool{
		Name:        "list_cases",
		Description: "List simulation cases whose rounded pressure ratio, temperature and water percentage fall inside the given [min, max] ranges.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"p_range":   rangeSchema("Pressure ratio range"),
				"t_range":   rangeSchema("Temperature range"),
				"h2o_range": rangeSchema("Water percentage range"),
			},
			Required: []string{"p_range", "t_range", "h2o_range"},
		},
	}, handlers.ListCases)

	server.AddTool(mcp.Tool{
		Name:        "compute_projection",
		Description: "Project the selected cases' frames for one variable to 2D (PCA then t-SNE), cluster them with DBSCAN and return coordinates, labels, centroids and annotations. The returned selection_id addresses the run in describe_record and describe_case.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"cases": map[string]interface{}{
					"type":        "array",
					"description": "Case names to include",
					"items":       map[string]interface{}{"type": "string"},
				},
				"component": componentSchema,
				"eps": map[string]interface{}{
					"type":        "number",
					"description": "DBSCAN neighborhood radius in projected space",
				},
				"min_samples": map[string]interface{}{
					"type":        "number",
					"description": "DBSCAN minimum neighborhood size (default: 5)",
					"default":     5,
				},
				"include_coords": map[string]interface{}{
					"type":        "boolean",
					"description": "Include per-point arrays in the result (default: false, summary only)",
					"default":     false,
				},
			},
			Required: []string{"cases", "component", "eps"},
		},
	}, handlers.ComputeProjection)

	server.AddTool(mcp.Tool{
		Name:        "set_record_description",
		Description: "Set the description of one frame by source id. An empty description removes it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source_id": map[string]interface{}{
					"type":        "string",
					"description": "Frame filename",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Description text",
				},
			},
			Required: []string{"source_id", "description"},
		},
	}, handlers.SetRecordDescription)

	server.AddTool(mcp.Tool{
		Name:        "set_case_description",
		Description: "Set the description of a case for one component. An empty description removes it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"case": map[string]interface{}{
					"type":        "string",
					"description": "Case name",
				},
				"component":   componentSchema,
				"description": map[string]interface{}{"type": "string", "description": "Description text"},
			},
			Required: []string{"case", "component", "description"},
		},
	}, handlers.SetCaseDescription)

	server.AddTool(mcp.Tool{
		Name:        "describe_record",
		Description: "Generate a description of one frame of a selection with the vision model, using annotated centroids as references.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"selection_id": map[string]interface{}{"type": "string", "description": "Id returned by compute_projection"},
				"index": map[string]interface{}{
					"type":        "number",
					"description": "Point index within the selection",
				},
				"component": componentSchema,
			},
			Required: []string{"selection_id", "index", "component"},
		},
	}, handlers.DescribeRecord)

	server.AddTool(mcp.Tool{
		Name:        "describe_case",
		Description: "Generate a summary of one case of a selection from the given frames.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"selection_id": map[string]interface{}{"type": "string", "description": "Id returned by compute_projection"},
				"case":         map[string]interface{}{"type": "string", "description": "Case name"},
				"component":    componentSchema,
				"indices": map[string]interface{}{
					"type":        "array",
					"description": "Point indices within the selection to show the model",
					"items":       map[string]interface{}{"type": "number"},
				},
			},
			Required: []string{"selection_id", "case", "component", "indices"},
		},
	}, handlers.DescribeCase)

	return handlers
}
