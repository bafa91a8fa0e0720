package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"bedrockchat/internal/config"
)

// Connect loads the shared AWS configuration and builds a DynamoDB client
// from it. The returned aws.Config is reused for the other AWS clients
// (Bedrock, S3) so every service signs with the same credentials.
func Connect(ctx context.Context, cfg *config.Config) (aws.Config, *dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	})

	// Cheap existence check so a bad region or missing table fails at
	// startup instead of on the first login.
	_, err = client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(cfg.AuthTableName),
	})
	if err != nil {
		return aws.Config{}, nil, fmt.Errorf("unable to reach table %s: %w", cfg.AuthTableName, err)
	}

	return awsCfg, client, nil
}
