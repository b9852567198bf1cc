package secrets

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccessor struct {
	values   map[string]string
	requests []string
	closed   bool
}

func (f *fakeAccessor) AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.requests = append(f.requests, req.GetName())
	v, ok := f.values[req.GetName()]
	if !ok {
		return nil, errors.New("not found")
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Name:    req.GetName(),
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(v)},
	}, nil
}

func (f *fakeAccessor) Close() error {
	f.closed = true
	return nil
}

func newFakeResolver(fake *fakeAccessor) (*GoogleResolver, *int) {
	dials := 0
	return &GoogleResolver{dial: func(ctx context.Context) (versionAccessor, error) {
		dials++
		return fake, nil
	}}, &dials
}

func TestIsReference(t *testing.T) {
	assert.True(t, IsReference("gcpsm://projects/p/secrets/s"))
	assert.False(t, IsReference("https://discord.com/api/webhooks/1/abc"))
	assert.False(t, IsReference(""))
}

func TestVersionName(t *testing.T) {
	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{ref: "gcpsm://projects/p/secrets/s", want: "projects/p/secrets/s/versions/latest"},
		{ref: "gcpsm://projects/p/secrets/s/versions/3", want: "projects/p/secrets/s/versions/3"},
		{ref: "gcpsm://projects/p/secrets/s/", want: "projects/p/secrets/s/versions/latest"},
		{ref: "gcpsm://secrets/s", wantErr: true},
		{ref: "gcpsm://projects//secrets/s", wantErr: true},
		{ref: "gcpsm://projects/p/topics/s", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := VersionName(tt.ref)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrResolve))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGoogleResolver_Resolve(t *testing.T) {
	fake := &fakeAccessor{values: map[string]string{
		"projects/p/secrets/hook/versions/latest": "https://discord.com/api/webhooks/1/abc\n",
	}}
	r, dials := newFakeResolver(fake)

	v, err := r.Resolve(context.Background(), "gcpsm://projects/p/secrets/hook")
	require.NoError(t, err)
	assert.Equal(t, "https://discord.com/api/webhooks/1/abc", v)

	_, err = r.Resolve(context.Background(), "gcpsm://projects/p/secrets/other")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResolve))

	assert.Equal(t, 1, *dials)
	assert.Equal(t, []string{
		"projects/p/secrets/hook/versions/latest",
		"projects/p/secrets/other/versions/latest",
	}, fake.requests)

	require.NoError(t, r.Close())
	assert.True(t, fake.closed)
	require.NoError(t, r.Close())
}

func TestGoogleResolver_EmptySecret(t *testing.T) {
	fake := &fakeAccessor{values: map[string]string{"projects/p/secrets/hook/versions/1": "  "}}
	r, _ := newFakeResolver(fake)

	_, err := r.Resolve(context.Background(), "gcpsm://projects/p/secrets/hook/versions/1")
	assert.ErrorIs(t, err, ErrResolve)
}

func TestGoogleResolver_DialError(t *testing.T) {
	r := &GoogleResolver{dial: func(ctx context.Context) (versionAccessor, error) {
		return nil, errors.New("no credentials")
	}}
	_, err := r.Resolve(context.Background(), "gcpsm://projects/p/secrets/hook")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResolve)
	assert.Contains(t, err.Error(), "no credentials")
}
