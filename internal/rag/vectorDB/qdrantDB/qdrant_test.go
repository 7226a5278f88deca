package qdrantDB

import (
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestCollectionName(t *testing.T) {
	tests := []struct {
		session string
		want    string
	}{
		{"Default Session", "session-Default-Session"},
		{"nlp", "session-nlp"},
		{"a/b..c", "session-a-b--c"},
	}
	for _, tt := range tests {
		if got := collectionName(tt.session); got != tt.want {
			t.Errorf("collectionName(%q) = %q; want %q", tt.session, got, tt.want)
		}
	}
}

func TestIsMissingCollection(t *testing.T) {
	if !isMissingCollection(status.Error(codes.NotFound, "Collection `session_x` doesn't exist!")) {
		t.Error("NotFound from a fresh session should read as an empty index")
	}
	if isMissingCollection(status.Error(codes.Unavailable, "connection refused")) {
		t.Error("an outage must not be swallowed as an empty index")
	}
	if isMissingCollection(errors.New("plain error")) {
		t.Error("non-grpc errors are not a missing collection")
	}
}

func TestIsCollectionConflict(t *testing.T) {
	if !isCollectionConflict(status.Error(codes.AlreadyExists, "Collection `session_x` already exists!")) {
		t.Error("a concurrent create losing the race is not a failure")
	}
	if isCollectionConflict(nil) {
		t.Error("nil error is not a conflict")
	}
}
