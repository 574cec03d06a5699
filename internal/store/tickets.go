package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/magpress/magpress/internal/apperr"
	"github.com/magpress/magpress/internal/audit"
	"github.com/magpress/magpress/internal/models"
)

// TicketParams carries the editable fields of an event ticket.
type TicketParams struct {
	EventID   *uint
	Name      string
	PriceCent int
	Quantity  int
	Active    bool
}

func (p *TicketParams) validate(ctx context.Context, db *gorm.DB) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return &apperr.ValidationError{Field: "name", Reason: "must not be blank"}
	}
	if p.PriceCent < 0 {
		return &apperr.ValidationError{Field: "price_cent", Reason: "must not be negative"}
	}
	if p.Quantity < 0 {
		return &apperr.ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	if p.EventID != nil {
		var ev models.Event
		if err := db.WithContext(ctx).First(&ev, *p.EventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &apperr.ValidationError{Field: "event_id", Reason: "event does not exist"}
			}
			return apperr.Persistence("load event", err)
		}
	}
	return nil
}

func (s *Store) CreateTicket(ctx context.Context, p TicketParams) (*models.Ticket, error) {
	if err := p.validate(ctx, s.db); err != nil {
		return nil, err
	}
	tk := models.Ticket{
		EventID:   p.EventID,
		Name:      p.Name,
		PriceCent: p.PriceCent,
		Quantity:  p.Quantity,
		Active:    p.Active,
	}
	if err := s.db.WithContext(ctx).Create(&tk).Error; err != nil {
		return nil, apperr.Persistence("create ticket", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action: "ticket.create", Entity: "ticket", EntityID: &tk.ID,
		Description: "Created ticket " + tk.Name,
	})
	return &tk, nil
}

func (s *Store) UpdateTicket(ctx context.Context, id uint, p TicketParams) (*models.Ticket, error) {
	var tk models.Ticket
	if err := s.db.WithContext(ctx).First(&tk, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "ticket", ID: id}
		}
		return nil, apperr.Persistence("load ticket", err)
	}
	if err := p.validate(ctx, s.db); err != nil {
		return nil, err
	}
	wasActive := tk.Active
	tk.EventID = p.EventID
	tk.Name = p.Name
	tk.PriceCent = p.PriceCent
	tk.Quantity = p.Quantity
	tk.Active = p.Active
	if err := s.db.WithContext(ctx).Save(&tk).Error; err != nil {
		return nil, apperr.Persistence("update ticket", err)
	}
	entry := audit.Entry{
		Action: "ticket.update", Entity: "ticket", EntityID: &tk.ID,
		Description: "Updated ticket " + tk.Name,
	}
	if wasActive != tk.Active {
		entry.Metadata = audit.FieldDiff{Field: "active", From: wasActive, To: tk.Active}
	}
	s.rec.Record(ctx, entry)
	return &tk, nil
}

// ListTickets retrieves tickets, optionally narrowed to one event.
func (s *Store) ListTickets(ctx context.Context, eventID *uint) ([]models.Ticket, error) {
	q := s.db.WithContext(ctx).Order("id")
	if eventID != nil {
		q = q.Where("event_id = ?", *eventID)
	}
	var tks []models.Ticket
	if err := q.Find(&tks).Error; err != nil {
		return nil, apperr.Persistence("list tickets", err)
	}
	return tks, nil
}

func (s *Store) DeleteTicket(ctx context.Context, id uint) error {
	var tk models.Ticket
	if err := s.db.WithContext(ctx).First(&tk, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFoundError{Entity: "ticket", ID: id}
		}
		return apperr.Persistence("load ticket", err)
	}
	if err := s.db.WithContext(ctx).Delete(&tk).Error; err != nil {
		return apperr.Persistence("delete ticket", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action: "ticket.delete", Entity: "ticket", EntityID: &id,
		Description: "Deleted ticket " + tk.Name,
	})
	return nil
}
