package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/aws/smithy-go"
	"github.com/windoze95/saltybytes-finder/internal/config"
	"github.com/windoze95/saltybytes-finder/internal/logger"
	"github.com/windoze95/saltybytes-finder/internal/models"
	"go.uber.org/zap"
)

// sageMakerInvoker is the subset of the SageMaker runtime client we call.
type sageMakerInvoker interface {
	InvokeEndpoint(ctx context.Context, params *sagemakerruntime.InvokeEndpointInput, optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error)
}

// SageMakerEmbedder implements EmbeddingProvider against a hosted
// sentence-embedding model on a SageMaker inference endpoint.
type SageMakerEmbedder struct {
	client       sageMakerInvoker
	endpointName string
	dimension    int
}

// NewSageMakerEmbedder creates an embedder from the app config.
// When AWS access key and secret are provided, static credentials are used;
// otherwise the default credential chain applies (Lambda execution role,
// task role, instance profile).
func NewSageMakerEmbedder(ctx context.Context, cfg *config.Config) (*SageMakerEmbedder, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.EnvVars.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.EnvVars.AWSRegion))
	}
	if cfg.EnvVars.AWSAccessKeyID != "" && cfg.EnvVars.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.EnvVars.AWSAccessKeyID,
			cfg.EnvVars.AWSSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load AWS config: %v", models.ErrConfiguration, err)
	}

	return NewSageMakerEmbedderWithClient(
		sagemakerruntime.NewFromConfig(awsCfg),
		cfg.EnvVars.SageMakerEndpointName,
		cfg.EnvVars.EmbeddingDimension,
	), nil
}

// NewSageMakerEmbedderWithClient wires an embedder to an existing client.
func NewSageMakerEmbedderWithClient(client sageMakerInvoker, endpointName string, dimension int) *SageMakerEmbedder {
	return &SageMakerEmbedder{
		client:       client,
		endpointName: endpointName,
		dimension:    dimension,
	}
}

// ModelID names the endpoint for cache keys.
func (e *SageMakerEmbedder) ModelID() string {
	return "sagemaker:" + e.endpointName
}

// GenerateEmbedding sends {"inputs": text} to the endpoint and extracts the
// primary embedding from the response.
func (e *SageMakerEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if e.endpointName == "" {
		return nil, fmt.Errorf("%w: SageMaker endpoint name is not set", models.ErrConfiguration)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: embedding text is empty", models.ErrValidation)
	}

	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode embedding request: %w", err)
	}

	out, err := e.client.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(e.endpointName),
		ContentType:  aws.String("application/json"),
		Accept:       aws.String("application/json"),
		Body:         body,
	})
	if err != nil {
		return nil, classifySageMakerError(e.endpointName, err)
	}

	vec, err := extractPrimaryEmbedding(out.Body)
	if err != nil {
		logger.FromContext(ctx).Error("unexpected embedding response",
			zap.String("endpoint", e.endpointName),
			zap.String("body", logger.Truncate(string(out.Body), logger.DiagnosticLimit)),
			zap.Error(err),
		)
		return nil, err
	}
	if err := checkDimension(vec, e.dimension); err != nil {
		return nil, err
	}
	return vec, nil
}

// classifySageMakerError maps SDK failures onto the error taxonomy. A missing
// endpoint or denied access is a deployment problem, not an outage.
func classifySageMakerError(endpoint string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ValidationError":
			if strings.Contains(apiErr.ErrorMessage(), "not found") {
				return fmt.Errorf("%w: endpoint %q: %v", models.ErrConfiguration, endpoint, err)
			}
		case "AccessDeniedException", "UnrecognizedClientException", "InvalidSignatureException":
			return fmt.Errorf("%w: endpoint %q: %v", models.ErrConfiguration, endpoint, err)
		}
	}
	return fmt.Errorf("%w: endpoint %q: %w", models.ErrUpstreamUnavailable, endpoint, err)
}
