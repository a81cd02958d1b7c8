package secrets

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
)

// DefaultProfile is the shared credential profile used when none is configured.
const DefaultProfile = "default"

var (
	// ErrCredentialsUnavailable indicates no usable ambient credential set could be resolved.
	ErrCredentialsUnavailable = errors.New("secrets: ambient credentials unavailable")

	// ErrSecretNotFound indicates the parameter store has no parameter with the requested name.
	ErrSecretNotFound = errors.New("secrets: parameter not found")

	// ErrSecretStoreUnreachable indicates a network or transport failure talking to the store.
	ErrSecretStoreUnreachable = errors.New("secrets: parameter store unreachable")
)

// credentialErrorCodes are store replies that mean the ambient identity itself is unusable.
var credentialErrorCodes = map[string]bool{
	"UnrecognizedClientException": true,
	"InvalidClientTokenId":        true,
	"ExpiredTokenException":       true,
	"InvalidSignatureException":   true,
	"AccessDeniedException":       true,
}

// Logger is an interface for optional logging in SSMProvider.
type Logger interface {
	Printf(format string, args ...any)
}

// ParameterAPI is the subset of the SSM client used by SSMProvider.
type ParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Config selects the ambient credential profile and the store's region.
type Config struct {
	// Region is the parameter store region (e.g. "us-east-1").
	Region string

	// Profile is the shared credential profile. Empty selects DefaultProfile.
	Profile string

	// Endpoint overrides the SSM endpoint (optional, e.g. for LocalStack).
	Endpoint string
}

// SSMProvider resolves named secrets from AWS Systems Manager Parameter Store.
//
// Values are fetched on every call and never cached.
type SSMProvider struct {
	client      ParameterAPI
	credentials aws.CredentialsProvider
	logger      Logger
}

// Option is a functional option for configuring SSMProvider.
type Option func(*SSMProvider)

// WithLogger sets a custom logger for lookups. Values are never logged.
func WithLogger(logger Logger) Option {
	return func(p *SSMProvider) {
		p.logger = logger
	}
}

// WithLoggingEnabled enables logging using the default Go log package.
func WithLoggingEnabled() Option {
	return func(p *SSMProvider) {
		p.logger = log.Default()
	}
}

// NewSSMProvider creates a provider from an existing client and credential provider.
func NewSSMProvider(client ParameterAPI, credentials aws.CredentialsProvider, opts ...Option) *SSMProvider {
	p := &SSMProvider{
		client:      client,
		credentials: credentials,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// LoadSSMProvider discovers ambient credentials through the default AWS chain
// for the configured profile and region and builds an SSM-backed provider.
func LoadSSMProvider(ctx context.Context, cfg Config, opts ...Option) (*SSMProvider, error) {
	if cfg.Region == "" {
		return nil, errors.New("secrets: region is required")
	}

	profile := cfg.Profile
	if profile == "" {
		profile = DefaultProfile
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		// One GetParameter per Resolve; callers own retry policy.
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	// The default profile is implicit in the chain.
	if profile != DefaultProfile {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: load AWS config for profile %q: %w", ErrCredentialsUnavailable, profile, err)
	}

	client := ssm.NewFromConfig(awsCfg, func(o *ssm.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.RetryMaxAttempts = 1
	})

	return NewSSMProvider(client, awsCfg.Credentials, opts...), nil
}

// Resolve returns the plaintext value of the named parameter.
//
// Errors wrap ErrCredentialsUnavailable, ErrSecretNotFound or ErrSecretStoreUnreachable.
// Nothing is retried.
func (p *SSMProvider) Resolve(ctx context.Context, name string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if name == "" {
		return "", fmt.Errorf("%w: parameter name is empty", ErrSecretNotFound)
	}

	if p.credentials == nil {
		return "", fmt.Errorf("%w: no credential provider configured", ErrCredentialsUnavailable)
	}
	if _, err := p.credentials.Retrieve(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCredentialsUnavailable, err)
	}

	out, err := p.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", classifyParameterError(name, err)
	}

	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("%w: %q has no value", ErrSecretNotFound, name)
	}

	if p.logger != nil {
		p.logger.Printf("secrets: resolved parameter %q", name)
	}

	return *out.Parameter.Value, nil
}

func classifyParameterError(name string, err error) error {
	var notFound *types.ParameterNotFound
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %q: %w", ErrSecretNotFound, name, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if credentialErrorCodes[apiErr.ErrorCode()] {
			return fmt.Errorf("%w: %w", ErrCredentialsUnavailable, err)
		}
		if apiErr.ErrorCode() == "ParameterVersionNotFound" {
			return fmt.Errorf("%w: %q: %w", ErrSecretNotFound, name, err)
		}
	}

	return fmt.Errorf("%w: get parameter %q: %w", ErrSecretStoreUnreachable, name, err)
}
