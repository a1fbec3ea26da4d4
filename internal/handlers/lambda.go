package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/windoze95/saltybytes-finder/internal/logger"
	"github.com/windoze95/saltybytes-finder/internal/models"
	"github.com/windoze95/saltybytes-finder/internal/service"
	"go.uber.org/zap"
)

// LambdaHandler serves recommendations from AWS Lambda.
type LambdaHandler struct {
	Service *service.SearchService
}

// NewLambdaHandler creates a new LambdaHandler.
func NewLambdaHandler(searchService *service.SearchService) *LambdaHandler {
	return &LambdaHandler{Service: searchService}
}

// Handle accepts an API Gateway proxy event (REST or HTTP API) or a direct
// invocation whose payload is the request envelope itself. It always answers
// with {statusCode, headers, body}; failures are reported in the body, never
// as an invocation error.
func (h *LambdaHandler) Handle(ctx context.Context, payload json.RawMessage) (events.APIGatewayProxyResponse, error) {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		ctx = logger.ContextWithRequestID(ctx, lc.AwsRequestID)
	}

	body, err := lambdaRequestBody(payload)
	if err != nil {
		return lambdaResponse(ctx, service.FailureResult(service.StageValidating, err)), nil
	}

	envelope, err := decodeSearchEnvelope(body)
	if err != nil {
		return lambdaResponse(ctx, service.FailureResult(service.StageValidating, err)), nil
	}

	result := h.Service.Search(ctx, envelope.User, envelope.Request)
	return lambdaResponse(ctx, result), nil
}

// lambdaRequestBody extracts the request envelope from the invocation payload.
func lambdaRequestBody(payload []byte) ([]byte, error) {
	var rest events.APIGatewayProxyRequest
	if err := json.Unmarshal(payload, &rest); err == nil && rest.HTTPMethod != "" {
		return proxyBody(rest.Body, rest.IsBase64Encoded)
	}

	var httpAPI events.APIGatewayV2HTTPRequest
	if err := json.Unmarshal(payload, &httpAPI); err == nil && httpAPI.RequestContext.HTTP.Method != "" {
		return proxyBody(httpAPI.Body, httpAPI.IsBase64Encoded)
	}

	return payload, nil
}

func proxyBody(body string, isBase64 bool) ([]byte, error) {
	if !isBase64 {
		return []byte(body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: request body is not valid base64: %v", models.ErrValidation, err)
	}
	return decoded, nil
}

func lambdaResponse(ctx context.Context, result service.SearchResult) events.APIGatewayProxyResponse {
	headers := map[string]string{"Content-Type": "application/json"}
	if id := logger.RequestIDFromContext(ctx); id != "" {
		headers[logger.RequestIDHeader] = id
	}

	status := result.StatusCode()
	body, err := json.Marshal(result)
	if err != nil {
		logger.FromContext(ctx).Error("failed to encode response", zap.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(service.FailureResult(service.StageDone, fmt.Errorf("failed to encode response: %v", err)))
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}
