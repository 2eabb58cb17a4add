// ABOUTME: MCP tool handler implementations for the flowscope server
// ABOUTME: Each handler validates arguments, calls core.Explorer and returns JSON text
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"

	"github.com/harper/flowscope/internal/catalog"
	"github.com/harper/flowscope/internal/core"
	"github.com/harper/flowscope/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	explorer *core.Explorer
}

// NewHandlers creates handlers without registering them
func NewHandlers(explorer *core.Explorer) *Handlers {
	return &Handlers{explorer: explorer}
}

// ListCases handles the list_cases tool
func (h *Handlers) ListCases(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	var ranges catalog.CaseRanges
	for _, f := range []struct {
		key string
		dst *catalog.Range
	}{{"p_range", &ranges.P}, {"t_range", &ranges.T}, {"h2o_range", &ranges.H2O}} {
		r, err := rangeArg(args, f.key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		*f.dst = r
	}

	cases, err := h.explorer.ListCases(ctx, ranges)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list cases failed: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{"cases": cases, "count": len(cases)})
}

// projectionSummary is the compact compute_projection result
type projectionSummary struct {
	SelectionID      string                       `json:"selection_id"`
	Variable         models.Variable              `json:"variable"`
	Points           int                          `json:"points"`
	ClusterCount     int                          `json:"cluster_count"`
	Noise            int                          `json:"noise"`
	ClusterSizes     map[string]int               `json:"cluster_sizes"`
	Centroids        []centroidInfo               `json:"centroids"`
	CaseOrder        []string                     `json:"case_order"`
	CaseDescriptions map[string]map[string]string `json:"case_descriptions"`
}

type centroidInfo struct {
	Index       int     `json:"index"`
	Label       int     `json:"label"`
	SourceID    string  `json:"source_id"`
	Description *string `json:"description,omitempty"`
}

// ComputeProjection handles the compute_projection tool
func (h *Handlers) ComputeProjection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	cases, err := stringsArg(args, "cases")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	component, err := models.ParseVariable(request.GetString("component", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eps, err := request.RequireFloat("eps")
	if err != nil {
		return mcp.NewToolResultError("eps argument is required and must be a number"), nil
	}
	minSamples := request.GetInt("min_samples", 5)

	resp, err := h.explorer.ComputeProjection(ctx, core.ProjectionRequest{
		Cases:      cases,
		Variable:   component,
		Eps:        eps,
		MinSamples: minSamples,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("projection failed: %v", err)), nil
	}
	log.Printf("[MCP] compute_projection %s: %d points", resp.SelectionID, len(resp.Coords))

	if request.GetBool("include_coords", false) {
		return jsonResult(resp)
	}
	return jsonResult(summarize(resp))
}

func summarize(resp *core.ProjectionResponse) projectionSummary {
	sum := projectionSummary{
		SelectionID:      resp.SelectionID,
		Variable:         resp.Variable,
		Points:           len(resp.Coords),
		ClusterCount:     resp.ClusterCount,
		ClusterSizes:     make(map[string]int),
		Centroids:        make([]centroidInfo, 0, len(resp.CentroidIndices)),
		CaseOrder:        resp.CaseOrder,
		CaseDescriptions: resp.CaseDescriptions,
	}
	for _, l := range resp.Labels {
		if l < 0 {
			sum.Noise++
			continue
		}
		sum.ClusterSizes[fmt.Sprint(l)]++
	}
	for _, i := range resp.CentroidIndices {
		sum.Centroids = append(sum.Centroids, centroidInfo{
			Index:       i,
			Label:       resp.Labels[i],
			SourceID:    resp.SourceIDs[i],
			Description: resp.Descriptions[i],
		})
	}
	return sum
}

// SetRecordDescription handles the set_record_description tool
func (h *Handlers) SetRecordDescription(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, err := request.RequireString("source_id")
	if err != nil {
		return mcp.NewToolResultError("source_id argument is required and must be a string"), nil
	}
	text, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("description argument is required and must be a string"), nil
	}
	if err := h.explorer.SetRecordDescription(ctx, sourceID, text); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set description: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{"source_id": sourceID, "status": statusFor(text)})
}

// SetCaseDescription handles the set_case_description tool
func (h *Handlers) SetCaseDescription(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	caseName, err := request.RequireString("case")
	if err != nil {
		return mcp.NewToolResultError("case argument is required and must be a string"), nil
	}
	component, err := models.ParseVariable(request.GetString("component", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := request.RequireString("description")
	if err != nil {
		return mcp.NewToolResultError("description argument is required and must be a string"), nil
	}
	if err := h.explorer.SetCaseDescription(ctx, caseName, component, text); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set case description: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{"case": caseName, "component": component, "status": statusFor(text)})
}

// DescribeRecord handles the describe_record tool
func (h *Handlers) DescribeRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	selectionID, err := request.RequireString("selection_id")
	if err != nil {
		return mcp.NewToolResultError("selection_id argument is required and must be a string"), nil
	}
	index, err := intArg(arguments(request), "index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	component, err := models.ParseVariable(request.GetString("component", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	desc, err := h.explorer.DescribeRecord(ctx, selectionID, index, component)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("describe record failed: %v", err)), nil
	}
	return jsonResult(desc)
}

// DescribeCase handles the describe_case tool
func (h *Handlers) DescribeCase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	selectionID, err := request.RequireString("selection_id")
	if err != nil {
		return mcp.NewToolResultError("selection_id argument is required and must be a string"), nil
	}
	caseName, err := request.RequireString("case")
	if err != nil {
		return mcp.NewToolResultError("case argument is required and must be a string"), nil
	}
	component, err := models.ParseVariable(request.GetString("component", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	indices, err := intsArg(args, "indices")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	desc, err := h.explorer.DescribeCase(ctx, selectionID, caseName, component, indices)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("describe case failed: %v", err)), nil
	}
	return jsonResult(desc)
}

func statusFor(text string) string {
	if text == "" {
		return "removed"
	}
	return "updated"
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	return args
}

// JSON numbers arrive as float64
func numbersArg(args map[string]any, key string) ([]float64, error) {
	raw, ok := args[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%s argument is required and must be an array of numbers", key)
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a number", key, i)
		}
		out[i] = f
	}
	return out, nil
}

func rangeArg(args map[string]any, key string) (catalog.Range, error) {
	nums, err := numbersArg(args, key)
	if err != nil {
		return catalog.Range{}, err
	}
	if len(nums) != 2 {
		return catalog.Range{}, fmt.Errorf("%s must be [min, max]", key)
	}
	return catalog.Range{Min: nums[0], Max: nums[1]}, nil
}

func intArg(args map[string]any, key string) (int, error) {
	f, ok := args[key].(float64)
	if !ok {
		return 0, fmt.Errorf("%s argument is required and must be a number", key)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return int(f), nil
}

func intsArg(args map[string]any, key string) ([]int, error) {
	nums, err := numbersArg(args, key)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(nums))
	for i, f := range nums {
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("%s[%d] must be an integer", key, i)
		}
		out[i] = int(f)
	}
	return out, nil
}

func stringsArg(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%s argument is required and must be an array of strings", key)
	}
	out := make([]string, len(raw))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a string", key, i)
		}
		out[i] = s
	}
	return out, nil
}
