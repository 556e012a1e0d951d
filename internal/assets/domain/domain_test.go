package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/assetvault/internal/errors"
)

func TestCounter_Column(t *testing.T) {
	col, err := CounterChats.Column()
	require.NoError(t, err)
	assert.Equal(t, "total_chats", col)

	col, err = CounterDownloads.Column()
	require.NoError(t, err)
	assert.Equal(t, "total_downloads", col)

	_, err = Counter("total_chats; DROP TABLE assets").Column()
	assert.ErrorIs(t, err, ErrInvalidCounter)
}

func TestAsset_HasBlob(t *testing.T) {
	a := &Asset{}
	assert.False(t, a.HasBlob())
	a.BlobURL = "mem://bucket/encrypted-assets/x/y.enc"
	assert.True(t, a.HasBlob())
}

func TestErrors_MapToBaseErrors(t *testing.T) {
	assert.True(t, apperrors.Is(ErrAssetNotFound, apperrors.ErrNotFound))
	assert.True(t, apperrors.Is(ErrUnauthorized, apperrors.ErrForbidden))
	assert.True(t, apperrors.Is(ErrVerificationUnavailable, apperrors.ErrUnavailable))
	assert.False(t, apperrors.Is(ErrVerificationUnavailable, apperrors.ErrForbidden))
	assert.True(t, apperrors.Is(ErrTransfer, apperrors.ErrBadGateway))
	assert.True(t, apperrors.Is(ErrInvalidVerificationTarget, apperrors.ErrBadRequest))
	assert.True(t, apperrors.Is(ErrDuplicateID, apperrors.ErrConflict))
}
