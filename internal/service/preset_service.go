package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PresetService struct {
	presetRepo  repository.PresetRepository
	catalogRepo repository.CatalogRepository
}

func NewPresetService(presetRepo repository.PresetRepository, catalogRepo repository.CatalogRepository) *PresetService {
	return &PresetService{
		presetRepo:  presetRepo,
		catalogRepo: catalogRepo,
	}
}

type PresetInput struct {
	Name                string
	Label               string
	MapIDs              []string
	AutoBannedLeaderIDs []string
	Rotations           *domain.Rotations
}

func (s *PresetService) List(ctx context.Context) ([]*domain.Preset, error) {
	return s.presetRepo.List(ctx)
}

func (s *PresetService) Get(ctx context.Context, id uuid.UUID) (*domain.Preset, error) {
	return s.presetRepo.GetByID(ctx, id)
}

func (s *PresetService) Create(ctx context.Context, input PresetInput) (*domain.Preset, error) {
	preset := &domain.Preset{ID: uuid.New()}
	if err := s.apply(ctx, preset, input); err != nil {
		return nil, err
	}
	if err := s.checkNameFree(ctx, preset.Name, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.presetRepo.Create(ctx, preset); err != nil {
		return nil, err
	}
	return preset, nil
}

func (s *PresetService) Update(ctx context.Context, id uuid.UUID, input PresetInput) (*domain.Preset, error) {
	preset, err := s.presetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, preset, input); err != nil {
		return nil, err
	}
	if err := s.checkNameFree(ctx, preset.Name, id); err != nil {
		return nil, err
	}
	if err := s.presetRepo.Update(ctx, preset); err != nil {
		return nil, err
	}
	return preset, nil
}

func (s *PresetService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.presetRepo.Delete(ctx, id)
}

func (s *PresetService) checkNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.presetRepo.GetByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrPresetNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return domain.ErrPresetNameTaken
	}
	return nil
}

func (s *PresetService) apply(ctx context.Context, preset *domain.Preset, input PresetInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidPreset)
	}

	rotations := domain.DefaultRotations
	if input.Rotations != nil {
		rotations = *input.Rotations
	}
	if err := rotations.Validate(); err != nil {
		return err
	}

	for _, id := range input.MapIDs {
		if _, err := s.catalogRepo.GetMap(ctx, id); errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: unknown map %q", domain.ErrInvalidPreset, id)
		} else if err != nil {
			return err
		}
	}
	for _, id := range input.AutoBannedLeaderIDs {
		if _, err := s.catalogRepo.GetLeader(ctx, id); errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: unknown leader %q", domain.ErrInvalidPreset, id)
		} else if err != nil {
			return err
		}
	}

	preset.Name = name
	preset.Label = input.Label
	preset.MapIDs = append(datatypes.JSONSlice[string]{}, input.MapIDs...)
	preset.AutoBannedLeaderIDs = append(datatypes.JSONSlice[string]{}, input.AutoBannedLeaderIDs...)
	preset.Rotations = rotations
	return nil
}
