package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/magpress/magpress/internal/apperr"
	"github.com/magpress/magpress/internal/audit"
	"github.com/magpress/magpress/internal/models"
)

// Remaining content entities of the admin dashboard. These are plain CRUD
// with the same validate/mutate/audit shape as the rest of the store.

// EventParams carries the editable fields of an event.
type EventParams struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	ImageURL    string
}

func (s *Store) CreateEvent(ctx context.Context, p EventParams) (*models.Event, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, &apperr.ValidationError{Field: "title", Reason: "must not be blank"}
	}
	ev := models.Event{
		Title:       strings.TrimSpace(p.Title),
		Description: p.Description,
		Location:    p.Location,
		StartsAt:    p.StartsAt,
		EndsAt:      p.EndsAt,
		ImageURL:    p.ImageURL,
	}
	if err := s.db.WithContext(ctx).Create(&ev).Error; err != nil {
		return nil, apperr.Persistence("create event", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action: "event.create", Entity: "event", EntityID: &ev.ID,
		Description: "Created event " + ev.Title,
	})
	return &ev, nil
}

func (s *Store) UpdateEvent(ctx context.Context, id uint, p EventParams) (*models.Event, error) {
	var ev models.Event
	if err := s.db.WithContext(ctx).First(&ev, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "event", ID: id}
		}
		return nil, apperr.Persistence("load event", err)
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, &apperr.ValidationError{Field: "title", Reason: "must not be blank"}
	}
	ev.Title = strings.TrimSpace(p.Title)
	ev.Description = p.Description
	ev.Location = p.Location
	ev.StartsAt = p.StartsAt
	ev.EndsAt = p.EndsAt
	if p.ImageURL != "" {
		ev.ImageURL = p.ImageURL
	}
	if err := s.db.WithContext(ctx).Save(&ev).Error; err != nil {
		return nil, apperr.Persistence("update event", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action: "event.update", Entity: "event", EntityID: &ev.ID,
		Description: "Updated event " + ev.Title,
	})
	return &ev, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]models.Event, error) {
	var evs []models.Event
	if err := s.db.WithContext(ctx).Order("starts_at DESC").Find(&evs).Error; err != nil {
		return nil, apperr.Persistence("list events", err)
	}
	return evs, nil
}

func (s *Store) DeleteEvent(ctx context.Context, id uint) error {
	var ev models.Event
	if err := s.db.WithContext(ctx).First(&ev, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFoundError{Entity: "event", ID: id}
		}
		return apperr.Persistence("load event", err)
	}
	if err := s.db.WithContext(ctx).Delete(&ev).Error; err != nil {
		return apperr.Persistence("delete event", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action: "event.delete", Entity: "event", EntityID: &id,
		Description: "Deleted event " + ev.Title,
	})
	return nil
}

// SponsorParams carries the editable fields of a sponsor.
type SponsorParams struct {
	Name    string
	Website string
	LogoURL string
	Active  bool
}

func (s *Store) CreateSponsor(ctx context.Context, p SponsorParams) (*models.Sponsor, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, &apperr.ValidationError{Field: "name", Reason: "must not be blank"}
	}
	sp := models.Sponsor{Name: strings.TrimSpace(p.Name), Website: p.Website, LogoURL: p.LogoURL, Active: p.Active}
	if err := s.db.WithContext(ctx).Create(&sp).Error; err != nil {
		return nil, apperr.Persistence("create sponsor", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action: "sponsor.create", Entity: "sponsor", EntityID: &sp.ID,
		Description: "Created sponsor " + sp.Name,
	})
	return &sp, nil
}

func (s *Store) UpdateSponsor(ctx context.Context, id uint, p SponsorParams) (*models.Sponsor, error) {
	var sp models.Sponsor
	if err := s.db.WithContext(ctx).First(&sp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "sponsor", ID: id}
		}
		return nil, apperr.Persistence("load sponsor", err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, &apperr.ValidationError{Field: "name", Reason: "must not be blank"}
	}
	sp.Name = strings.TrimSpace(p.Name)
	sp.Website = p.Website
	sp.Active = p.Active
	if p.LogoURL != "" {
		sp.LogoURL = p.LogoURL
	}
	if err := s.db.WithContext(ctx).Save(&sp).Error; err != nil {
		return nil, apperr.Persistence("update sponsor", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action: "sponsor.update", Entity: "sponsor", EntityID: &sp.ID,
		Description: "Updated sponsor " + sp.Name,
	})
	return &sp, nil
}

func (s *Store) ListSponsors(ctx context.Context) ([]models.Sponsor, error) {
	var sps []models.Sponsor
	if err := s.db.WithContext(ctx).Order("name").Find(&sps).Error; err != nil {
		return nil, apperr.Persistence("list sponsors", err)
	}
	return sps, nil
}

func (s *Store) DeleteSponsor(ctx context.Context, id uint) error {
	var sp models.Sponsor
	if err := s.db.WithContext(ctx).First(&sp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFoundError{Entity: "sponsor", ID: id}
		}
		return apperr.Persistence("load sponsor", err)
	}
	if err := s.db.WithContext(ctx).Delete(&sp).Error; err != nil {
		return apperr.Persistence("delete sponsor", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action: "sponsor.delete", Entity: "sponsor", EntityID: &id,
		Description: "Deleted sponsor " + sp.Name,
	})
	return nil
}

// TeamMemberParams carries the editable fields of a team profile.
type TeamMemberParams struct {
	Name     string
	Title    string
	Bio      string
	ImageURL string
}

func (s *Store) CreateTeamMember(ctx context.Context, p TeamMemberParams) (*models.TeamMember, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, &apperr.ValidationError{Field: "name", Reason: "must not be blank"}
	}
	tm := models.TeamMember{Name: strings.TrimSpace(p.Name), Title: p.Title, Bio: p.Bio, ImageURL: p.ImageURL}
	if err := s.db.WithContext(ctx).Create(&tm).Error; err != nil {
		return nil, apperr.Persistence("create team member", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action: "team_member.create", Entity: "team_member", EntityID: &tm.ID,
		Description: "Created team member " + tm.Name,
	})
	return &tm, nil
}

func (s *Store) UpdateTeamMember(ctx context.Context, id uint, p TeamMemberParams) (*models.TeamMember, error) {
	var tm models.TeamMember
	if err := s.db.WithContext(ctx).First(&tm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "team member", ID: id}
		}
		return nil, apperr.Persistence("load team member", err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, &apperr.ValidationError{Field: "name", Reason: "must not be blank"}
	}
	tm.Name = strings.TrimSpace(p.Name)
	tm.Title = p.Title
	tm.Bio = p.Bio
	if p.ImageURL != "" {
		tm.ImageURL = p.ImageURL
	}
	if err := s.db.WithContext(ctx).Save(&tm).Error; err != nil {
		return nil, apperr.Persistence("update team member", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action: "team_member.update", Entity: "team_member", EntityID: &tm.ID,
		Description: "Updated team member " + tm.Name,
	})
	return &tm, nil
}

func (s *Store) ListTeamMembers(ctx context.Context) ([]models.TeamMember, error) {
	var tms []models.TeamMember
	if err := s.db.WithContext(ctx).Order("id").Find(&tms).Error; err != nil {
		return nil, apperr.Persistence("list team members", err)
	}
	return tms, nil
}

func (s *Store) DeleteTeamMember(ctx context.Context, id uint) error {
	var tm models.TeamMember
	if err := s.db.WithContext(ctx).First(&tm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFoundError{Entity: "team member", ID: id}
		}
		return apperr.Persistence("load team member", err)
	}
	if err := s.db.WithContext(ctx).Delete(&tm).Error; err != nil {
		return apperr.Persistence("delete team member", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action: "team_member.delete", Entity: "team_member", EntityID: &id,
		Description: "Deleted team member " + tm.Name,
	})
	return nil
}

// PrintedMaterialParams carries the editable fields of an archived issue.
type PrintedMaterialParams struct {
	Title       string
	IssueNumber string
	PublishedOn time.Time
	FileURL     string
	CoverURL    string
}

func (s *Store) CreatePrintedMaterial(ctx context.Context, p PrintedMaterialParams) (*models.PrintedMaterial, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, &apperr.ValidationError{Field: "title", Reason: "must not be blank"}
	}
	pm := models.PrintedMaterial{
		Title:       strings.TrimSpace(p.Title),
		IssueNumber: p.IssueNumber,
		PublishedOn: p.PublishedOn,
		FileURL:     p.FileURL,
		CoverURL:    p.CoverURL,
	}
	if err := s.db.WithContext(ctx).Create(&pm).Error; err != nil {
		return nil, apperr.Persistence("create printed material", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action: "printed_material.create", Entity: "printed_material", EntityID: &pm.ID,
		Description: "Created printed material " + pm.Title,
	})
	return &pm, nil
}

func (s *Store) UpdatePrintedMaterial(ctx context.Context, id uint, p PrintedMaterialParams) (*models.PrintedMaterial, error) {
	var pm models.PrintedMaterial
	if err := s.db.WithContext(ctx).First(&pm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "printed material", ID: id}
		}
		return nil, apperr.Persistence("load printed material", err)
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, &apperr.ValidationError{Field: "title", Reason: "must not be blank"}
	}
	pm.Title = strings.TrimSpace(p.Title)
	pm.IssueNumber = p.IssueNumber
	pm.PublishedOn = p.PublishedOn
	if p.FileURL != "" {
		pm.FileURL = p.FileURL
	}
	if p.CoverURL != "" {
		pm.CoverURL = p.CoverURL
	}
	if err := s.db.WithContext(ctx).Save(&pm).Error; err != nil {
		return nil, apperr.Persistence("update printed material", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action: "printed_material.update", Entity: "printed_material", EntityID: &pm.ID,
		Description: "Updated printed material " + pm.Title,
	})
	return &pm, nil
}

func (s *Store) ListPrintedMaterials(ctx context.Context) ([]models.PrintedMaterial, error) {
	var pms []models.PrintedMaterial
	if err := s.db.WithContext(ctx).Order("published_on DESC").Find(&pms).Error; err != nil {
		return nil, apperr.Persistence("list printed materials", err)
	}
	return pms, nil
}

func (s *Store) DeletePrintedMaterial(ctx context.Context, id uint) error {
	var pm models.PrintedMaterial
	if err := s.db.WithContext(ctx).First(&pm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFoundError{Entity: "printed material", ID: id}
		}
		return apperr.Persistence("load printed material", err)
	}
	if err := s.db.WithContext(ctx).Delete(&pm).Error; err != nil {
		return apperr.Persistence("delete printed material", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action: "printed_material.delete", Entity: "printed_material", EntityID: &id,
		Description: "Deleted printed material " + pm.Title,
	})
	return nil
}
