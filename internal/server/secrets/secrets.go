// Package secrets loads the startup provider credential from AWS Secrets Manager.
// Secret values are never logged, only secret identifiers.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"llmchess/internal/server/credential"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
)

const (
	ResourceNotFoundException = "ResourceNotFoundException"
	AccessDeniedException     = "AccessDeniedException"
)

var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrAccessDenied   = errors.New("access denied to secret")
	ErrSecretEmpty    = errors.New("secret has no value")
	ErrFieldMissing   = errors.New("secret field missing")
)

// ManagerAPI is the subset of the Secrets Manager client this package calls
type ManagerAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

type Source struct {
	api ManagerAPI
	log *slog.Logger
}

// NewSource loads the default AWS configuration; region may be empty to use the environment
func NewSource(ctx context.Context, region string, log *slog.Logger) (*Source, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSourceWithAPI(secretsmanager.NewFromConfig(cfg), log), nil
}

func NewSourceWithAPI(api ManagerAPI, log *slog.Logger) *Source {
	if log == nil {
		log = slog.Default()
	}
	return &Source{api: api, log: log}
}

// Credential fetches a secret and returns it as a credential.
//
// The reference is "<secret-id>" for a plain-text secret or "<secret-id>#<field>"
// for a JSON secret, e.g. "prod/llmchess#OPENAI_API_KEY".
func (s *Source) Credential(ctx context.Context, ref string) (credential.Credential, error) {
	id, field, _ := strings.Cut(ref, "#")
	if id == "" {
		return credential.Credential{}, fmt.Errorf("secret id cannot be empty")
	}

	s.log.InfoContext(ctx, "retrieving secret", "secret_id", id, "field", field)

	out, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(id)})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case ResourceNotFoundException:
				return credential.Credential{}, fmt.Errorf("%w: %s", ErrSecretNotFound, id)
			case AccessDeniedException:
				return credential.Credential{}, fmt.Errorf("%w: %s", ErrAccessDenied, id)
			}
		}
		s.log.ErrorContext(ctx, "failed to retrieve secret", "secret_id", id, "error", err)
		return credential.Credential{}, fmt.Errorf("get secret %s: %w", id, err)
	}

	var value string
	switch {
	case out.SecretString != nil:
		value = *out.SecretString
	case out.SecretBinary != nil:
		value = string(out.SecretBinary)
	}

	if field != "" {
		var fields map[string]string
		if err := json.Unmarshal([]byte(value), &fields); err != nil {
			return credential.Credential{}, fmt.Errorf("secret %s is not a JSON object: %w", id, err)
		}
		v, ok := fields[field]
		if !ok {
			return credential.Credential{}, fmt.Errorf("%w: %s#%s", ErrFieldMissing, id, field)
		}
		value = v
	}

	cred := credential.New(value)
	if cred.IsZero() {
		return credential.Credential{}, fmt.Errorf("%w: %s", ErrSecretEmpty, id)
	}
	s.log.InfoContext(ctx, "secret retrieved successfully", "secret_id", id, "credential", cred)
	return cred, nil
}
