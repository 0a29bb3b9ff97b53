package repository

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	rdsutils "github.com/aws/aws-sdk-go-v2/feature/rds/auth"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/lib/pq"

	"github.com/nholding/rate-calendar/internal/config"
)

// Clients holds the AWS-backed clients of the enabled audit sinks. A nil
// field means the matching sink is disabled.
type Clients struct {
	RDS *RDSClient
	S3  *S3Client
}

type S3Client struct {
	Client     *s3.Client // The actual S3 client
	BucketName string     // The bucket name (from config)
	Prefix     string
}

// RDSClient encapsulates the PostgreSQL RDS client (sql.DB) with IAM authentication
type RDSClient struct {
	Client *sql.DB // The actual PostgreSQL database client
}

// Close releases the database pool.
func (c *RDSClient) Close() error {
	return c.Client.Close()
}

// LoadAWSConfig resolves credentials and region for one sink.
func LoadAWSConfig(ctx context.Context, c config.AWSConfig) (*aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(c.Region)}
	if c.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(c.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &cfg, nil
}

// NewS3Client creates a new S3 client and stores the bucket name
func NewS3Client(ctx context.Context, cfg config.ArchiveConfig) (*S3Client, error) {
	awsCfg, err := LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("load AWS config for S3 client: %w", err)
	}

	client := s3.NewFromConfig(*awsCfg)
	return &S3Client{
		Client:     client,
		BucketName: cfg.Bucket,
		Prefix:     cfg.Prefix,
	}, nil
}

// BuildConnString renders the lib/pq URL for the ledger database, with the
// IAM auth token as the password.
func BuildConnString(cfg config.LedgerConfig, authToken string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, authToken),
		Host:     fmt.Sprintf("%s:%d", cfg.Endpoint, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
	}
	return u.String()
}

// NewRDSClient creates and returns a new PostgreSQL RDS client using IAM authentication
func NewRDSClient(ctx context.Context, cfg config.LedgerConfig) (*RDSClient, error) {
	// Step 1: Load AWS config (credentials, region, etc.)
	awsCfg, err := LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("load AWS config for RDS: %w", err)
	}

	endpointWithPort := fmt.Sprintf("%s:%d", cfg.Endpoint, cfg.Port)

	// This operation is performed locally, not an API call
	authToken, err := rdsutils.BuildAuthToken(
		ctx,
		endpointWithPort,
		cfg.AWS.Region,
		cfg.User,
		awsCfg.Credentials, // Uses the loaded credentials provider from aws.Config
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authentication token: %w", err)
	}

	// Step 2: Open the PostgreSQL connection (sql.DB)
	db, err := sql.Open("postgres", BuildConnString(cfg, authToken))
	if err != nil {
		return nil, fmt.Errorf("failed to open DB connection: %w", err)
	}

	// Step 3: Ping the DB to ensure the connection is working
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping RDS PostgreSQL database: %w", err)
	}

	return &RDSClient{Client: db}, nil
}

// NewAWSClients creates the clients of every enabled sink.
func NewAWSClients(ctx context.Context, cfg *config.Config) (*Clients, error) {
	clients := &Clients{}

	if cfg.Archive.Enabled {
		s3Client, err := NewS3Client(ctx, cfg.Archive)
		if err != nil {
			return nil, fmt.Errorf("error creating S3 client: %w", err)
		}
		clients.S3 = s3Client
	}

	if cfg.Ledger.Enabled {
		rdsClient, err := NewRDSClient(ctx, cfg.Ledger)
		if err != nil {
			return nil, fmt.Errorf("error creating RDS client: %w", err)
		}
		clients.RDS = rdsClient
	}

	return clients, nil
}

// Close releases every open client.
func (c *Clients) Close() error {
	if c.RDS != nil {
		return c.RDS.Close()
	}
	return nil
}
