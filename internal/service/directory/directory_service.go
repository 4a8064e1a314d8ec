package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/homecare/internal/domain"
	"github.com/Domenick1991/homecare/internal/phone"
	"github.com/Domenick1991/homecare/internal/repository"
)

// DirectoryUseCase resolves callers to client identities.
type DirectoryUseCase interface {
	// Resolve returns (nil, nil) for an unknown caller.
	Resolve(ctx context.Context, rawPhone string) (*domain.Client, error)
	Register(ctx context.Context, rawPhone, name string) (*domain.Client, error)
	SetLanguage(ctx context.Context, client *domain.Client, lang domain.Language) error
}

type DirectoryService struct {
	clients     repository.ClientRepository
	countryCode string
}

func NewDirectoryService(clients repository.ClientRepository, countryCode string) *DirectoryService {
	return &DirectoryService{clients: clients, countryCode: countryCode}
}

func (s *DirectoryService) Resolve(ctx context.Context, rawPhone string) (*domain.Client, error) {
	for _, candidate := range phone.Variants(rawPhone, s.countryCode) {
		client, err := s.clients.GetByPhone(ctx, candidate)
		if err == nil {
			return client, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("lookup %s: %w", candidate, err)
		}
	}
	return nil, nil
}

// Register creates a directory entry under the normalized phone number.
func (s *DirectoryService) Register(ctx context.Context, rawPhone, name string) (*domain.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name is required")
	}

	existing, err := s.Resolve(ctx, rawPhone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, domain.ErrAlreadyRegistered
	}

	client := &domain.Client{
		Name:     name,
		Phone:    phone.Normalize(rawPhone, s.countryCode),
		Language: domain.LanguageSwahili,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *DirectoryService) SetLanguage(ctx context.Context, client *domain.Client, lang domain.Language) error {
	if err := s.clients.UpdateLanguage(ctx, client.ID, lang); err != nil {
		return err
	}
	client.Language = lang
	return nil
}

var _ DirectoryUseCase = (*DirectoryService)(nil)
