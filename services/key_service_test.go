package services

import (
	"log/slog"
	"testing"

	"driftway/domain"
	"driftway/errors"
	"driftway/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestKeyService_Activate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	keys := mocks.NewMockIKeyBundleRepository(ctrl)
	conversations := mocks.NewMockIConversationRepository(ctrl)
	svc := NewKeyService(keys, conversations, slog.Default())

	t.Run("should rotate the bundle when the actor is a participant", func(t *testing.T) {
		req := require.New(t)

		conversations.EXPECT().IsParticipant("conv-1", "alice").Return(true, nil)
		keys.EXPECT().
			Activate("conv-1", "opaque-bundle", "alice").
			Return(domain.KeyBundle{ID: "key-1", ConversationID: "conv-1", IsActive: true}, nil)

		bundle, err := svc.Activate("conv-1", "opaque-bundle", "alice")
		req.NoError(err)
		req.Equal("key-1", bundle.ID)
		req.True(bundle.IsActive)
	})

	t.Run("should refuse a non-participant", func(t *testing.T) {
		req := require.New(t)

		conversations.EXPECT().IsParticipant("conv-1", "mallory").Return(false, nil)
		keys.EXPECT().Activate(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Activate("conv-1", "opaque-bundle", "mallory")
		req.ErrorIs(err, errors.ErrNotAParticipant)
	})

	t.Run("should propagate an unknown conversation", func(t *testing.T) {
		req := require.New(t)

		conversations.EXPECT().
			IsParticipant("no-such", "alice").
			Return(false, errors.ErrNotFound)

		_, err := svc.Activate("no-such", "opaque-bundle", "alice")
		req.ErrorIs(err, errors.ErrNotFound)
	})
}

func TestKeyService_GetActive_And_Deactivate(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	keys := mocks.NewMockIKeyBundleRepository(ctrl)
	conversations := mocks.NewMockIConversationRepository(ctrl)
	svc := NewKeyService(keys, conversations, slog.Default())

	keys.EXPECT().
		GetActive("conv-1").
		Return(domain.KeyBundle{ID: "key-1", IsActive: true}, nil)
	bundle, err := svc.GetActive("conv-1")
	req.NoError(err)
	req.Equal("key-1", bundle.ID)

	keys.EXPECT().DeactivateAll("conv-1").Return(nil)
	req.NoError(svc.Deactivate("conv-1"))

	keys.EXPECT().GetActive("conv-2").Return(domain.KeyBundle{}, errors.ErrNotFound)
	_, err = svc.GetActive("conv-2")
	req.ErrorIs(err, errors.ErrNotFound)
}
