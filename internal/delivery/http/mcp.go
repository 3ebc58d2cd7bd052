package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gin-gonic/gin"
	"github.com/macrolens/nutrilog/internal/domain"
)

// MCP tool names served on POST /mcp
const (
	ToolAnalyzeMeals = "analyze_meals"
	ToolResolveFood  = "resolve_food"
)

type analyzeMealsParams struct {
	Text           string `json:"text" description:"Free-text meals for one day"`
	TargetCalories int    `json:"target_calories,omitempty" description:"Daily calorie target (1200-3000)"`
}

type resolveFoodParams struct {
	Name string `json:"name" description:"Food name to resolve"`
}

// CallTool serves MCP tools/call requests over plain HTTP
func (h *Handler) CallTool(c *gin.Context) {
	if !h.requireService(c) {
		return
	}

	var request protocol.CallToolRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid JSON: %v", err)})
		return
	}

	var (
		data any
		err  error
	)

	switch request.Name {
	case ToolAnalyzeMeals:
		data, err = h.callAnalyzeMeals(c, &request)
	case ToolResolveFood:
		data, err = h.callResolveFood(c, &request)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Unknown tool: %s", request.Name)})
		return
	}

	if err != nil {
		h.writeError(c, err)
		return
	}

	result, err := jsonToolResult(data)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) callAnalyzeMeals(c *gin.Context, req *protocol.CallToolRequest) (any, error) {
	var params analyzeMealsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	return h.analysisService.Analyze(c.Request.Context(), &domain.AnalyzeRequest{
		Text:           params.Text,
		TargetCalories: params.TargetCalories,
	})
}

func (h *Handler) callResolveFood(c *gin.Context, req *protocol.CallToolRequest) (any, error) {
	var params resolveFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	return h.analysisService.ResolveFood(c.Request.Context(), params.Name)
}

// extractParams decodes the request's argument map into target
func extractParams(req *protocol.CallToolRequest, target any) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: arguments: %v", domain.ErrInvalidRequest, err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: arguments: %v", domain.ErrInvalidRequest, err)
	}

	return nil
}

// jsonToolResult wraps data as a single JSON text content block
func jsonToolResult(data any) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
