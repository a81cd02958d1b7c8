package secrets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/AmmannChristian/go-forgeauth/internal/testutil"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParameterAPI struct {
	mu     sync.Mutex
	values map[string]string
	err    error
	inputs []*ssm.GetParameterInput
}

func (f *fakeParameterAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)

	if f.err != nil {
		return nil, f.err
	}

	value, ok := f.values[aws.ToString(in.Name)]
	if !ok {
		return nil, &types.ParameterNotFound{Message: aws.String("parameter not found")}
	}

	return &ssm.GetParameterOutput{
		Parameter: &types.Parameter{Name: in.Name, Value: aws.String(value)},
	}, nil
}

func (f *fakeParameterAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

func staticCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret", Source: "test"}, nil
	})
}

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Printf(format string, args ...any) {
	l.messages = append(l.messages, fmt.Sprintf(format, args...))
}

func TestSSMProvider_Resolve(t *testing.T) {
	api := &fakeParameterAPI{values: map[string]string{"/forge/client-id": "my-client"}}
	provider := NewSSMProvider(api, staticCredentials())

	value, err := provider.Resolve(context.Background(), "/forge/client-id")
	require.NoError(t, err)
	assert.Equal(t, "my-client", value)

	require.Len(t, api.inputs, 1)
	assert.Equal(t, "/forge/client-id", aws.ToString(api.inputs[0].Name))
	assert.True(t, aws.ToBool(api.inputs[0].WithDecryption), "SecureString parameters must be decrypted")
}

func TestSSMProvider_Resolve_NeverCaches(t *testing.T) {
	api := &fakeParameterAPI{values: map[string]string{"/forge/client-secret": "s3cr3t"}}
	provider := NewSSMProvider(api, staticCredentials())

	for i := 0; i < 3; i++ {
		_, err := provider.Resolve(context.Background(), "/forge/client-secret")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, api.calls())
}

func TestSSMProvider_Resolve_Errors(t *testing.T) {
	failingCredentials := aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{}, errors.New("no EC2 IMDS role found")
	})

	tests := []struct {
		name        string
		api         *fakeParameterAPI
		credentials aws.CredentialsProvider
		param       string
		want        error
		wantCalls   int
	}{
		{
			name:        "missing parameter",
			api:         &fakeParameterAPI{values: map[string]string{}},
			credentials: staticCredentials(),
			param:       "/forge/missing",
			want:        ErrSecretNotFound,
			wantCalls:   1,
		},
		{
			name:        "empty name",
			api:         &fakeParameterAPI{},
			credentials: staticCredentials(),
			param:       "",
			want:        ErrSecretNotFound,
			wantCalls:   0,
		},
		{
			name:        "no credential provider",
			api:         &fakeParameterAPI{},
			credentials: nil,
			param:       "/forge/client-id",
			want:        ErrCredentialsUnavailable,
			wantCalls:   0,
		},
		{
			name:        "credential chain exhausted",
			api:         &fakeParameterAPI{},
			credentials: failingCredentials,
			param:       "/forge/client-id",
			want:        ErrCredentialsUnavailable,
			wantCalls:   0,
		},
		{
			name: "store rejects identity",
			api: &fakeParameterAPI{err: &smithy.GenericAPIError{
				Code:    "UnrecognizedClientException",
				Message: "The security token included in the request is invalid.",
			}},
			credentials: staticCredentials(),
			param:       "/forge/client-id",
			want:        ErrCredentialsUnavailable,
			wantCalls:   1,
		},
		{
			name:        "transport failure",
			api:         &fakeParameterAPI{err: errors.New("dial tcp: lookup ssm.eu-west-1.amazonaws.com: no such host")},
			credentials: staticCredentials(),
			param:       "/forge/client-id",
			want:        ErrSecretStoreUnreachable,
			wantCalls:   1,
		},
		{
			name:        "throttled",
			api:         &fakeParameterAPI{err: &smithy.GenericAPIError{Code: "ThrottlingException"}},
			credentials: staticCredentials(),
			param:       "/forge/client-id",
			want:        ErrSecretStoreUnreachable,
			wantCalls:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewSSMProvider(tt.api, tt.credentials)

			value, err := provider.Resolve(context.Background(), tt.param)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, value)
			assert.Equal(t, tt.wantCalls, tt.api.calls(), "no retries expected")
		})
	}
}

func TestSSMProvider_Resolve_PreservesCause(t *testing.T) {
	notFound := &types.ParameterNotFound{Message: aws.String("gone")}
	provider := NewSSMProvider(&fakeParameterAPI{err: notFound}, staticCredentials())

	_, err := provider.Resolve(context.Background(), "/forge/client-id")

	var cause *types.ParameterNotFound
	require.ErrorAs(t, err, &cause)
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestSSMProvider_WithLogger_DoesNotLogValues(t *testing.T) {
	logger := &recordingLogger{}
	api := &fakeParameterAPI{values: map[string]string{"/forge/client-secret": "s3cr3t"}}
	provider := NewSSMProvider(api, staticCredentials(), WithLogger(logger))

	_, err := provider.Resolve(context.Background(), "/forge/client-secret")
	require.NoError(t, err)

	require.NotEmpty(t, logger.messages)
	for _, msg := range logger.messages {
		assert.NotContains(t, msg, "s3cr3t")
	}
}

func TestSSMProvider_WithLoggingEnabled(t *testing.T) {
	provider := NewSSMProvider(&fakeParameterAPI{}, staticCredentials(), WithLoggingEnabled())
	assert.NotNil(t, provider.logger)
}

func TestLoadSSMProvider_RequiresRegion(t *testing.T) {
	_, err := LoadSSMProvider(context.Background(), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region is required")
}

func TestLoadSSMProvider_UnknownProfile(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", t.TempDir()+"/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", t.TempDir()+"/credentials")

	_, err := LoadSSMProvider(context.Background(), Config{Region: "eu-west-1", Profile: "does-not-exist"})
	assert.ErrorIs(t, err, ErrCredentialsUnavailable)
}

func TestLoadSSMProvider_BuildsClient(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	provider, err := LoadSSMProvider(context.Background(), Config{Region: "eu-west-1", Endpoint: "http://127.0.0.1:4566"})
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.NotNil(t, provider.client)
	assert.NotNil(t, provider.credentials)
}

func TestLoadSSMProvider_ResolveSendsSingleRequest(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	var requests atomic.Int32
	server := testutil.NewLocalHTTPServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"__type":"ServiceUnavailable","message":"try later"}`))
	}))

	provider, err := LoadSSMProvider(context.Background(), Config{Region: "eu-west-1", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = provider.Resolve(context.Background(), "/forge/client-secret")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSecretStoreUnreachable)
	assert.Equal(t, int32(1), requests.Load(), "Resolve must not retry")
}
