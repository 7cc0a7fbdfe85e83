package menu

import (
	"context"
	"fmt"
	"net/url"
)

// OwnershipChecker is satisfied by the restaurant service; menu
// mutations are gated on it.
type OwnershipChecker interface {
	RequireOwner(ctx context.Context, restaurantID, userID string) error
}

// TreeSaver reconciles an edited tree against the stored baseline.
// Implemented by the diff-sync editor.
type TreeSaver interface {
	Apply(ctx context.Context, menuID string, original, edited []Section) ([]Section, error)
}

type Service struct {
	repo          Repository
	publicBaseURL string
}

func NewService(repo Repository, publicBaseURL string) *Service {
	return &Service{repo: repo, publicBaseURL: publicBaseURL}
}

// CreateMenu creates the menu row with a collision-free slug derived
// from the display name.
func (s *Service) CreateMenu(ctx context.Context, restaurantID, name string) (*Menu, error) {
	if name == "" {
		name = "Menu"
	}

	slug, err := UniqueSlug(ctx, s.repo, name)
	if err != nil {
		return nil, fmt.Errorf("slug generation: %w", err)
	}

	m := &Menu{
		RestaurantID: restaurantID,
		Name:         name,
		Slug:         slug,
	}
	if err := s.repo.CreateMenu(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) GetMenu(ctx context.Context, menuID string) (*Menu, error) {
	return s.repo.GetMenu(ctx, menuID)
}

func (s *Service) LoadTree(ctx context.Context, menuID string) ([]Section, error) {
	if _, err := s.repo.GetMenu(ctx, menuID); err != nil {
		return nil, err
	}
	return s.repo.LoadTree(ctx, menuID)
}

// PublicMenu resolves a diner-facing slug into the full tree.
func (s *Service) PublicMenu(ctx context.Context, slug string) (*Menu, []Section, error) {
	m, err := s.repo.GetMenuBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	sections, err := s.repo.LoadTree(ctx, m.ID)
	if err != nil {
		return nil, nil, err
	}
	return m, sections, nil
}

// MenuURL is the public link diners open.
func (s *Service) MenuURL(slug string) string {
	return fmt.Sprintf("%s/%s", s.publicBaseURL, slug)
}

// QRImageURL points at a public QR rendering API; the image itself is
// not generated here.
func (s *Service) QRImageURL(slug string) string {
	return "https://api.qrserver.com/v1/create-qr-code/?size=300x300&data=" +
		url.QueryEscape(s.MenuURL(slug))
}
