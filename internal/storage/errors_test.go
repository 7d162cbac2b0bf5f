package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/minio/minio-go/v7"
)

func TestIsNoSuchKey(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"minio NoSuchKey", minio.ErrorResponse{Code: "NoSuchKey"}, true},
		{"minio NotFound", minio.ErrorResponse{Code: "NotFound"}, true},
		{"wrapped", fmt.Errorf("remove object: %w", minio.ErrorResponse{Code: "NoSuchKey"}), true},
		{"gateway string", errors.New("The specified key does not exist."), true},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied"}, false},
	}
	for _, tc := range cases {
		if got := IsNoSuchKey(tc.err); got != tc.want {
			t.Errorf("%s: IsNoSuchKey = %v, want %v", tc.name, got, tc.want)
		}
	}
}
