package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ethereum/go-ethereum/common"

	"github.com/quorumfed/aggregator/internal/core/config"
	"github.com/quorumfed/aggregator/internal/core/logging"
	"github.com/quorumfed/aggregator/internal/core/models"
)

// CheckpointService exports every committed model version to S3 as its
// binary record. Uploads run off the commit path so an export failure
// never affects a committed round.
type CheckpointService struct {
	client        *s3.Client
	bucketName    string
	uploadTimeout time.Duration
}

func NewCheckpointService(cfg *config.Config) (*CheckpointService, error) {
	if cfg.AWS.AccessKeyID == "" || cfg.AWS.SecretAccessKey == "" {
		return nil, fmt.Errorf("missing required AWS credentials")
	}

	if cfg.AWS.Region == "" {
		return nil, fmt.Errorf("AWS region must be specified")
	}

	if cfg.AWS.BucketName == "" {
		return nil, fmt.Errorf("AWS bucket name must be specified")
	}

	creds := credentials.NewStaticCredentialsProvider(
		cfg.AWS.AccessKeyID,
		cfg.AWS.SecretAccessKey,
		"",
	)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWS.Region),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return &CheckpointService{
		client:        s3.NewFromConfig(awsCfg),
		bucketName:    cfg.AWS.BucketName,
		uploadTimeout: 30 * time.Second,
	}, nil
}

func (s *CheckpointService) TrainerRegistered(address common.Address, total int, weight float64) {
}

func (s *CheckpointService) UpdateSubmitted(address common.Address, outcome models.SubmitOutcome, ratio float64) {
}

func (s *CheckpointService) RoundCommitted(model *models.Model, contributors int) {
	go s.upload(model.Version, model.Encode())
}

func (s *CheckpointService) upload(version uint32, record []byte) {
	log := logging.WithComponent("checkpoint_service")

	ctx, cancel := context.WithTimeout(context.Background(), s.uploadTimeout)
	defer cancel()

	key := path.Join("models", fmt.Sprintf("v%d", version))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(record),
		ContentType:   aws.String("application/octet-stream"),
		ContentLength: aws.Int64(int64(len(record))),
	})
	if err != nil {
		log.Error().Err(err).
			Str("bucket", s.bucketName).
			Str("key", key).
			Msg("Failed to upload model checkpoint")
		return
	}

	log.Info().
		Str("bucket", s.bucketName).
		Str("key", key).
		Uint32("version", version).
		Msg("Uploaded model checkpoint")
}
