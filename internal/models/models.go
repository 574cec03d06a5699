package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SuperRoleName is the reserved unrestricted role. It is excluded from
// ordinary role-management listings.
const SuperRoleName = "SuperAdmin"

// User is an identity record for the admin panel.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"unique;not null"`
	DisplayName  string `gorm:"not null"`
	Phone        string
	ImageURL     string
	Active       bool
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// Role is a named permission group.
type Role struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;not null"`
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Permission is a named capability atom (e.g. "Create", "View").
type Permission struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// RolePermission maps a role to a permission. The composite key rules out
// duplicate pairs.
type RolePermission struct {
	RoleID       uint `gorm:"primaryKey;autoIncrement:false"`
	PermissionID uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt    time.Time
}

// UserRole maps a user to a role.
type UserRole struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	RoleID    uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}

// Page is a protected route descriptor.
type Page struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Path        string `gorm:"unique;not null"`
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// PageRole maps a page to a role allowed to access it. A page with no rows
// here is accessible to nobody.
type PageRole struct {
	PageID    uint `gorm:"primaryKey;autoIncrement:false"`
	RoleID    uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}

// AuditLog is an immutable append-only record of a sensitive action.
// Rows are created once and never updated or deleted.
type AuditLog struct {
	ID          uint  `gorm:"primaryKey"`
	UserID      *uint `gorm:"index"`
	UserName    string
	Action      string `gorm:"not null;index"`
	Entity      string `gorm:"index"`
	EntityID    *uint  `gorm:"index"`
	Description string
	Metadata    datatypes.JSON `gorm:"type:json"`
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time `gorm:"index"`
}

// Blog is a published article.
type Blog struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"not null"`
	Slug      string `gorm:"unique;not null"`
	Body      string
	ImageURL  string
	Published bool
	AuthorID  *uint
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Category groups blogs.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// BlogCategory maps a blog to a category.
type BlogCategory struct {
	BlogID     uint `gorm:"primaryKey;autoIncrement:false"`
	CategoryID uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt  time.Time
}

// Event is a magazine event listing.
type Event struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// Sponsor is a site sponsor entry.
type Sponsor struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Website   string
	LogoURL   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TeamMember is a staff profile shown on the team page.
type TeamMember struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Title     string
	Bio       string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Ticket is a purchasable admission tier for an event.
type Ticket struct {
	ID        uint   `gorm:"primaryKey"`
	EventID   *uint  `gorm:"index"`
	Name      string `gorm:"not null"`
	PriceCent int
	Quantity  int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// PrintedMaterial is an archived printed issue.
type PrintedMaterial struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	IssueNumber string
	PublishedOn time.Time
	FileURL     string
	CoverURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// All returns every model for auto-migration.
func All() []any {
	return []any{
		&User{}, &Role{}, &Permission{}, &RolePermission{}, &UserRole{},
		&Page{}, &PageRole{}, &AuditLog{},
		&Blog{}, &Category{}, &BlogCategory{},
		&Event{}, &Ticket{}, &Sponsor{}, &TeamMember{}, &PrintedMaterial{},
	}
}
