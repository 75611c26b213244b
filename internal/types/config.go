package types

type RunMode string

const (
	// ModeLocal is the mode for running the API server on a developer machine
	ModeLocal RunMode = "local"
	// ModeAPI is the mode for running the API server in a deployed environment
	ModeAPI RunMode = "api"
	// ModeAWSLambdaAPI serves the same router behind API Gateway
	ModeAWSLambdaAPI RunMode = "aws_lambda_api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// StorageDriver selects the backend holding settings and invoices
type StorageDriver string

const (
	StorageDriverPostgres StorageDriver = "postgres"
	StorageDriverSQLite   StorageDriver = "sqlite"
	StorageDriverMemory   StorageDriver = "memory"
)

// ArtifactBackend selects where rendered documents and logos are kept
type ArtifactBackend string

const (
	ArtifactBackendS3    ArtifactBackend = "s3"
	ArtifactBackendLocal ArtifactBackend = "local"
)

// ExtractionFailurePolicy decides what generation does when extraction fails
type ExtractionFailurePolicy string

const (
	// ExtractionFailurePolicyFallback substitutes deterministic placeholder data
	ExtractionFailurePolicyFallback ExtractionFailurePolicy = "fallback"
	// ExtractionFailurePolicyFail aborts generation with an extraction error
	ExtractionFailurePolicyFail ExtractionFailurePolicy = "fail"
)
