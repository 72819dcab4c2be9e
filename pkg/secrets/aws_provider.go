package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type GetSecretValueAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AwsProvider reads credentials from AWS Secrets Manager.
type AwsProvider struct {
	client GetSecretValueAPI
}

func NewAwsProvider(ctx context.Context, region string) (*AwsProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &AwsProvider{client: secretsmanager.NewFromConfig(cfg)}, nil
}

func NewAwsProviderFromAPI(api GetSecretValueAPI) *AwsProvider {
	return &AwsProvider{client: api}
}

func (p *AwsProvider) DatabaseCredentials(ctx context.Context, secretId string) (*DatabaseCredentials, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretId),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret %s: %w", secretId, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string payload", secretId)
	}

	var creds DatabaseCredentials
	if err := json.Unmarshal([]byte(*out.SecretString), &creds); err != nil {
		return nil, fmt.Errorf("parse secret %s: %w", secretId, err)
	}
	return &creds, nil
}
