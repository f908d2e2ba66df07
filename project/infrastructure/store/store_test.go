package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"secret-reactor/project/domain"
)

func TestMemoryRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	d := &domain.Detection{ChannelID: "C1", MessageTS: "1000.5", AuthorID: "U1", DetectedAt: 1700000000}
	require.NoError(t, repo.Create(ctx, d))

	err := repo.Create(ctx, d)
	assert.True(t, errors.Is(err, domain.ErrAlreadyRecorded))

	require.NoError(t, repo.MarkOutcome(ctx, "C1", "1000.5", true, false))
	got, err := repo.Find(ctx, "C1", "1000.5")
	require.NoError(t, err)
	assert.True(t, got.Reacted)
	assert.False(t, got.Redacted)
	assert.Equal(t, "U1", got.AuthorID)

	assert.True(t, errors.Is(repo.MarkOutcome(ctx, "C1", "2000.0", true, true), domain.ErrNotFound))
	_, err = repo.Find(ctx, "C9", "1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMemoryRepoValidation(t *testing.T) {
	err := NewMemoryRepo().Create(context.Background(), &domain.Detection{MessageTS: "1", DetectedAt: 1})
	assert.True(t, errors.Is(err, domain.ErrInvalid))
}

func TestFirestoreErrorCodes(t *testing.T) {
	assert.True(t, isNotFound(status.Error(codes.NotFound, "missing")))
	assert.False(t, isNotFound(status.Error(codes.AlreadyExists, "dup")))
	assert.True(t, isAlreadyExists(status.Error(codes.AlreadyExists, "dup")))
	assert.False(t, isAlreadyExists(errors.New("plain")))
}

func TestDetectionData(t *testing.T) {
	data := detectionData(&domain.Detection{
		ChannelID: "C1", MessageTS: "1000.5", AuthorID: "U1", AuthorName: "alice",
		ChannelName: "general", DetectedAt: 10, Reacted: true,
	})

	assert.Equal(t, "C1", data["channel_id"])
	assert.Equal(t, "alice", data["author_name"])
	assert.Equal(t, int64(10), data["detected_at"])
	assert.Equal(t, true, data["reacted"])
	assert.Equal(t, false, data["redacted"])
	assert.Equal(t, "C1:1000.5", detectionDocID("C1", "1000.5"))
}

func TestDetectionTagsMatchStoredKeys(t *testing.T) {
	data := detectionData(&domain.Detection{})

	typ := reflect.TypeOf(domain.Detection{})
	require.Equal(t, len(data), typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("firestore")
		assert.Contains(t, data, tag, "field %s", typ.Field(i).Name)
	}
}
