// File: internal/usecase/profile_uc.go
package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"next-ai-chat/internal/domain"
	"next-ai-chat/internal/domain/ports/repository"
)

const maxDisplayNameRunes = 64

var _ ProfileUseCase = (*profileUC)(nil)

type ProfileUseCase interface {
	// DisplayName returns the stored name or the configured default when
	// nothing (or something malformed) is stored.
	DisplayName(ctx context.Context, clientID string) (string, error)
	SetDisplayName(ctx context.Context, clientID, name string) error
}

type profileUC struct {
	profiles    repository.ProfileRepository
	defaultName string
}

func NewProfileUseCase(profiles repository.ProfileRepository, defaultName string) *profileUC {
	return &profileUC{profiles: profiles, defaultName: defaultName}
}

func (u *profileUC) DisplayName(ctx context.Context, clientID string) (string, error) {
	name, err := u.profiles.DisplayName(ctx, clientID)
	if err != nil {
		if err == domain.ErrNotFound {
			return u.defaultName, nil
		}
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return u.defaultName, nil
	}
	return name, nil
}

func (u *profileUC) SetDisplayName(ctx context.Context, clientID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxDisplayNameRunes {
		return domain.ErrInvalidArgument
	}
	return u.profiles.SetDisplayName(ctx, clientID, name)
}
