package config

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// LoadAwsConfig resolves credentials through the default chain
// (env, shared config, instance role) for the configured region.
func LoadAwsConfig(ctx context.Context, cfg S3Config) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
}

// NewS3Client builds an s3 client, honouring a custom endpoint when set.
func NewS3Client(awsCfg aws.Config, cfg S3Config, optFns ...func(*s3.Options)) *s3.Client {
	opts := append([]func(*s3.Options){func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}}, optFns...)
	return s3.NewFromConfig(awsCfg, opts...)
}
