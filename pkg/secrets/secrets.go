package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
)

// GoogleScheme prefixes webhook URLs that are stored in Google Secret
// Manager, e.g. gcpsm://projects/my-project/secrets/discord-webhook.
const GoogleScheme = "gcpsm://"

// ErrResolve wraps every failure to resolve a secret reference.
var ErrResolve = errors.New("resolve secret")

// Resolver turns a secret reference into its value.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// IsReference reports whether value points at a secret instead of being one.
func IsReference(value string) bool {
	return strings.HasPrefix(value, GoogleScheme)
}

// VersionName converts a reference to a Secret Manager version resource
// name. References without a version use "latest".
func VersionName(ref string) (string, error) {
	name := strings.Trim(strings.TrimPrefix(ref, GoogleScheme), "/")
	parts := strings.Split(name, "/")
	switch {
	case len(parts) == 4 && parts[0] == "projects" && parts[2] == "secrets":
		name += "/versions/latest"
	case len(parts) == 6 && parts[0] == "projects" && parts[2] == "secrets" && parts[4] == "versions":
	default:
		return "", fmt.Errorf("%w: malformed reference %q", ErrResolve, ref)
	}
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("%w: malformed reference %q", ErrResolve, ref)
		}
	}
	return name, nil
}

// versionAccessor is the subset of the Secret Manager client we call.
type versionAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// GoogleResolver reads secrets from Google Secret Manager. The client is
// created on first use with application default credentials.
type GoogleResolver struct {
	mu     sync.Mutex
	client versionAccessor
	dial   func(ctx context.Context) (versionAccessor, error)
}

func NewGoogleResolver() *GoogleResolver {
	return &GoogleResolver{
		dial: func(ctx context.Context) (versionAccessor, error) {
			return secretmanager.NewClient(ctx)
		},
	}
}

func (r *GoogleResolver) Resolve(ctx context.Context, ref string) (string, error) {
	name, err := VersionName(ref)
	if err != nil {
		return "", err
	}
	client, err := r.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrResolve, err)
	}
	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("%w: access %s: %v", ErrResolve, name, err)
	}
	value := strings.TrimSpace(string(resp.GetPayload().GetData()))
	if value == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrResolve, name)
	}
	return value, nil
}

func (r *GoogleResolver) getClient(ctx context.Context) (versionAccessor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return r.client, nil
	}
	client, err := r.dial(ctx)
	if err != nil {
		return nil, err
	}
	r.client = client
	return client, nil
}

// Close releases the client if one was created.
func (r *GoogleResolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}
