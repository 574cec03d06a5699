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

// BlogParams carries the editable fields of a blog post.
type BlogParams struct {
	Title       string
	Slug        string
	Body        string
	ImageURL    string
	Published   bool
	AuthorID    *uint
	CategoryIDs []uint
}

func (p *BlogParams) validate() error {
	p.Title = strings.TrimSpace(p.Title)
	p.Slug = strings.TrimSpace(strings.ToLower(p.Slug))
	if p.Title == "" {
		return &apperr.ValidationError{Field: "title", Reason: "must not be blank"}
	}
	if p.Slug == "" {
		return &apperr.ValidationError{Field: "slug", Reason: "must not be blank"}
	}
	return nil
}

// CreateBlog creates a blog post and attaches its category set.
func (s *Store) CreateBlog(ctx context.Context, p BlogParams) (*models.Blog, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	var existing models.Blog
	if err := s.db.WithContext(ctx).Unscoped().Where("slug = ?", p.Slug).First(&existing).Error; err == nil {
		return nil, &apperr.ValidationError{Field: "slug", Reason: "already in use"}
	}

	blog := models.Blog{
		Title:     p.Title,
		Slug:      p.Slug,
		Body:      p.Body,
		ImageURL:  p.ImageURL,
		Published: p.Published,
		AuthorID:  p.AuthorID,
	}
	if err := s.db.WithContext(ctx).Create(&blog).Error; err != nil {
		return nil, apperr.Persistence("create blog", err)
	}
	if len(p.CategoryIDs) > 0 {
		if _, err := s.ReplaceBlogCategories(ctx, blog.ID, p.CategoryIDs); err != nil {
			return nil, err
		}
	}

	s.rec.Record(ctx, audit.Entry{
		Action:      "blog.create",
		Entity:      "blog",
		EntityID:    &blog.ID,
		Description: "Created blog " + blog.Slug,
	})
	return &blog, nil
}

// UpdateBlog updates a blog post. The category set is replaced as a whole.
func (s *Store) UpdateBlog(ctx context.Context, id uint, p BlogParams) (*models.Blog, error) {
	var blog models.Blog
	if err := s.db.WithContext(ctx).First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "blog", ID: id}
		}
		return nil, apperr.Persistence("load blog", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.Slug != blog.Slug {
		var clash models.Blog
		if err := s.db.WithContext(ctx).Unscoped().Where("slug = ? AND id <> ?", p.Slug, id).First(&clash).Error; err == nil {
			return nil, &apperr.ValidationError{Field: "slug", Reason: "already in use"}
		}
	}

	wasPublished := blog.Published
	blog.Title = p.Title
	blog.Slug = p.Slug
	blog.Body = p.Body
	blog.Published = p.Published
	if p.ImageURL != "" {
		blog.ImageURL = p.ImageURL
	}
	if err := s.db.WithContext(ctx).Save(&blog).Error; err != nil {
		return nil, apperr.Persistence("update blog", err)
	}
	if p.CategoryIDs != nil {
		if _, err := s.ReplaceBlogCategories(ctx, blog.ID, p.CategoryIDs); err != nil {
			return nil, err
		}
	}

	entry := audit.Entry{
		Action:      "blog.update",
		Entity:      "blog",
		EntityID:    &blog.ID,
		Description: "Updated blog " + blog.Slug,
	}
	if wasPublished != blog.Published {
		entry.Metadata = audit.FieldDiff{Field: "published", From: wasPublished, To: blog.Published}
	}
	s.rec.Record(ctx, entry)
	return &blog, nil
}

// GetBlog retrieves a blog post by ID.
func (s *Store) GetBlog(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	if err := s.db.WithContext(ctx).First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "blog", ID: id}
		}
		return nil, apperr.Persistence("load blog", err)
	}
	return &blog, nil
}

// ListBlogs retrieves blog posts, newest first. When publishedOnly is set
// drafts are excluded (the public listing uses this).
func (s *Store) ListBlogs(ctx context.Context, publishedOnly bool) ([]models.Blog, error) {
	q := s.db.WithContext(ctx).Order("id DESC")
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	var blogs []models.Blog
	if err := q.Find(&blogs).Error; err != nil {
		return nil, apperr.Persistence("list blogs", err)
	}
	return blogs, nil
}

// DeleteBlog soft-deletes a blog post and clears its category links.
func (s *Store) DeleteBlog(ctx context.Context, id uint) error {
	var blog models.Blog
	if err := s.db.WithContext(ctx).First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFoundError{Entity: "blog", ID: id}
		}
		return apperr.Persistence("load blog", err)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_id = ?", id).Delete(&models.BlogCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&blog).Error
	})
	if err != nil {
		return apperr.Persistence("delete blog", err)
	}

	s.rec.Record(ctx, audit.Entry{
		Action:      "blog.delete",
		Entity:      "blog",
		EntityID:    &id,
		Description: "Deleted blog " + blog.Slug,
	})
	return nil
}

// CreateCategory creates a blog category.
func (s *Store) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &apperr.ValidationError{Field: "name", Reason: "must not be blank"}
	}
	var existing models.Category
	if err := s.db.WithContext(ctx).Unscoped().Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, &apperr.ValidationError{Field: "name", Reason: "already in use"}
	}

	cat := models.Category{Name: name}
	if err := s.db.WithContext(ctx).Create(&cat).Error; err != nil {
		return nil, apperr.Persistence("create category", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action:      "category.create",
		Entity:      "category",
		EntityID:    &cat.ID,
		Description: "Created category " + cat.Name,
	})
	return &cat, nil
}

// UpdateCategory renames a category.
func (s *Store) UpdateCategory(ctx context.Context, id uint, name string) (*models.Category, error) {
	var cat models.Category
	if err := s.db.WithContext(ctx).First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Entity: "category", ID: id}
		}
		return nil, apperr.Persistence("load category", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &apperr.ValidationError{Field: "name", Reason: "must not be blank"}
	}

	prev := cat.Name
	cat.Name = name
	if err := s.db.WithContext(ctx).Save(&cat).Error; err != nil {
		return nil, apperr.Persistence("update category", err)
	}
	s.rec.Record(ctx, audit.Entry{
		Action:      "category.update",
		Entity:      "category",
		EntityID:    &cat.ID,
		Description: "Updated category " + cat.Name,
		Metadata:    audit.FieldDiff{Field: "name", From: prev, To: cat.Name},
	})
	return &cat, nil
}

// ListCategories retrieves all categories.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.db.WithContext(ctx).Order("name").Find(&cats).Error; err != nil {
		return nil, apperr.Persistence("list categories", err)
	}
	return cats, nil
}

// DeleteCategory soft-deletes a category and detaches it from blogs.
func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	var cat models.Category
	if err := s.db.WithContext(ctx).First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.NotFoundError{Entity: "category", ID: id}
		}
		return apperr.Persistence("load category", err)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.BlogCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cat).Error
	})
	if err != nil {
		return apperr.Persistence("delete category", err)
	}

	s.rec.Record(ctx, audit.Entry{
		Action:      "category.delete",
		Entity:      "category",
		EntityID:    &id,
		Description: "Deleted category " + cat.Name,
	})
	return nil
}
