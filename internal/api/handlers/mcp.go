// Package handlers exposes the HTTP surface: the JSON-RPC tool endpoint and
// liveness probes.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/parlaylab/sports-mcp/internal/models"
	"github.com/parlaylab/sports-mcp/internal/tools"
)

// JSON-RPC 2.0 error codes used on this surface.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeServerError    = -32000
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string             `json:"jsonrpc"`
	ID      json.RawMessage    `json:"id"`
	Result  *models.ToolResult `json:"result,omitempty"`
	Error   *rpcError          `json:"error,omitempty"`
}

// MCPHandler routes tools/call requests onto the registry.
type MCPHandler struct {
	registry       *tools.Registry
	logger         *logrus.Logger
	overallTimeout time.Duration
}

func NewMCPHandler(registry *tools.Registry, overallTimeout time.Duration, logger *logrus.Logger) *MCPHandler {
	return &MCPHandler{
		registry:       registry,
		logger:         logger,
		overallTimeout: overallTimeout,
	}
}

// HandleRPC serves POST /mcp. Handler-level outcomes are always HTTP 200;
// only an escaped panic produces a 500.
func (h *MCPHandler) HandleRPC(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.reply(c, http.StatusOK, errorResponse(nil, codeParseError, "Parse error"))
		return
	}

	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.reply(c, http.StatusOK, errorResponse(nil, codeParseError, "Parse error"))
		return
	}
	// The id is echoed byte-for-byte, including an explicit or implied null.
	id := req.ID
	if len(id) == 0 {
		id = json.RawMessage("null")
	}

	if req.Method != "tools/call" {
		h.reply(c, http.StatusOK, errorResponse(id, codeMethodNotFound, "Method not found"))
		return
	}

	fn, ok := h.registry.Lookup(req.Params.Name)
	if !ok {
		h.reply(c, http.StatusOK, errorResponse(id, codeMethodNotFound, "Unknown tool: "+req.Params.Name))
		return
	}

	reqID := uuid.NewString()
	log := h.logger.WithFields(logrus.Fields{
		"request_id": reqID,
		"tool":       req.Params.Name,
	})
	log.Info("Dispatching tool call")

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.overallTimeout)
	defer cancel()

	result, panicked := h.invoke(ctx, fn, req.Params.Arguments, log)
	if panicked {
		h.reply(c, http.StatusInternalServerError, errorResponse(id, codeServerError, "Server error: internal failure"))
		return
	}
	if ctx.Err() == context.DeadlineExceeded {
		// Partial results assembled before the deadline are discarded.
		result = models.Failure(&models.UpstreamTransientError{Reason: "request deadline exceeded"})
	}

	log.WithField("ok", result.OK).Info("Tool call finished")
	h.reply(c, http.StatusOK, rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

// invoke runs the handler, converting a panic into a redacted server error.
// The panic detail is logged out-of-band, never sent on the wire.
func (h *MCPHandler) invoke(ctx context.Context, fn tools.ToolFunc, args json.RawMessage, log *logrus.Entry) (result *models.ToolResult, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Tool handler panicked")
			panicked = true
		}
	}()
	return fn(ctx, args), false
}

func (h *MCPHandler) reply(c *gin.Context, status int, resp rpcResponse) {
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.JSON(status, resp)
}

func errorResponse(id json.RawMessage, code int, message string) rpcResponse {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return rpcResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}}
}
