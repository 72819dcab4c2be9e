package bedrock

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
)

// InvokeModelAPI is the slice of the Bedrock runtime we consume.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client wraps the Bedrock runtime with the JSON-in/JSON-out invoke shape
// all our model calls share.
type Client struct {
	runtime InvokeModelAPI
}

func NewClient(ctx context.Context, region string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &Client{runtime: bedrockruntime.NewFromConfig(cfg)}, nil
}

// NewClientFromAPI wires an explicit runtime, used by tests and tooling.
func NewClientFromAPI(api InvokeModelAPI) *Client {
	return &Client{runtime: api}
}

// InvokeModel sends a JSON body to the given model and returns the raw
// response body.
func (c *Client) InvokeModel(ctx context.Context, modelId string, body []byte) ([]byte, error) {
	out, err := c.runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelId),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// IsThrottling reports whether err is a provider-side rate-limit rejection.
// Only these are worth retrying; everything else is permanent for the request.
func IsThrottling(err error) bool {
	if err == nil {
		return false
	}

	var throttled *types.ThrottlingException
	if errors.As(err, &throttled) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "TooManyRequestsException", "ServiceQuotaExceededException":
			return true
		}
	}

	return false
}
