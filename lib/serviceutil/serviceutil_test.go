package serviceutil

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"
)

func TestVerifyAccessTokenInterceptor(t *testing.T) {
	next := func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&struct{}{}), nil
	}

	testCases := []struct {
		name          string
		accessToken   string
		authorization string
		allowed       bool
	}{
		{name: "no token configured", accessToken: "", authorization: "", allowed: true},
		{name: "matching token", accessToken: "secret", authorization: "Bearer secret", allowed: true},
		{name: "lowercase scheme", accessToken: "secret", authorization: "bearer secret", allowed: true},
		{name: "missing header", accessToken: "secret", authorization: "", allowed: false},
		{name: "wrong token", accessToken: "secret", authorization: "Bearer secrets", allowed: false},
		{name: "token prefix", accessToken: "secret", authorization: "Bearer sec", allowed: false},
		{name: "wrong scheme", accessToken: "secret", authorization: "Basic secret", allowed: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := connect.NewRequest(&struct{}{})
			if tc.authorization != "" {
				req.Header().Set("Authorization", tc.authorization)
			}
			_, err := VerifyAccessTokenInterceptor(tc.accessToken)(next)(context.Background(), req)
			if tc.allowed {
				require.NoError(t, err)
				return
			}
			require.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
		})
	}
}

func TestProvideAccessTokenInterceptor(t *testing.T) {
	var seen string
	next := func(_ context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		seen = req.Header().Get("Authorization")
		return connect.NewResponse(&struct{}{}), nil
	}
	_, err := ProvideAccessTokenInterceptor("secret")(next)(context.Background(), connect.NewRequest(&struct{}{}))
	require.NoError(t, err)
	require.Equal(t, "Bearer secret", seen)
}
