// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/taibuivan/authgate/internal/platform/apperr"
	"github.com/taibuivan/authgate/internal/platform/dberr"
	"github.com/taibuivan/authgate/internal/users/identity"
)

// # Gorm Repository

// userRecord is the gorm mapping of the users_account table. Column names
// match the PostgreSQL migration.
type userRecord struct {
	ID           string     `gorm:"column:id;primaryKey;size:36"`
	Email        string     `gorm:"column:email;not null;uniqueIndex:uq_users_account_email"`
	Name         string     `gorm:"column:name;not null"`
	PasswordHash string     `gorm:"column:passwordhash;not null"`
	IsActive     bool       `gorm:"column:isactive;not null"`
	LastLogin    *time.Time `gorm:"column:lastlogin"`
	DateJoined   time.Time  `gorm:"column:datejoined;not null"`
	CreatedAt    time.Time  `gorm:"column:createdat"`
	UpdatedAt    time.Time  `gorm:"column:updatedat"`
}

// TableName implements gorm's schema.Tabler.
func (userRecord) TableName() string { return "users_account" }

func (record *userRecord) toDomain() *identity.User {
	return &identity.User{
		ID:           record.ID,
		Email:        record.Email,
		Name:         record.Name,
		PasswordHash: record.PasswordHash,
		IsActive:     record.IsActive,
		LastLogin:    record.LastLogin,
		DateJoined:   record.DateJoined,
	}
}

// GormUserRepository implements [UserRepository] with gorm, for SQLite.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates the repository and migrates its table.
func NewGormUserRepository(db *gorm.DB) (*GormUserRepository, error) {
	if err := db.AutoMigrate(&userRecord{}); err != nil {
		return nil, fmt.Errorf("gorm_user_repo_migrate_failed: %w", err)
	}
	return &GormUserRepository{db: db}, nil
}

// Create inserts a new account row.
func (repository *GormUserRepository) Create(context context.Context, user *identity.User) error {
	record := &userRecord{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		IsActive:     user.IsActive,
		LastLogin:    user.LastLogin,
		DateJoined:   user.DateJoined,
	}

	if err := repository.db.WithContext(context).Create(record).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return identity.ErrEmailTaken
		}
		return fmt.Errorf("gorm_user_repo_create_failed: %w", err)
	}
	return nil
}

// FindByEmail retrieves an account by its unique email address.
func (repository *GormUserRepository) FindByEmail(context context.Context, email string) (*identity.User, error) {
	user, err := repository.first(context, "email = ?", email)
	if err != nil {
		return nil, fmt.Errorf("gorm_user_repo_find_by_email_failed: %w", err)
	}
	return user, nil
}

// FindByID retrieves an account by its primary key.
func (repository *GormUserRepository) FindByID(context context.Context, id string) (*identity.User, error) {
	user, err := repository.first(context, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("gorm_user_repo_find_by_id_failed: %w", err)
	}
	return user, nil
}

// UpdateLastLogin stamps the account's last successful login.
func (repository *GormUserRepository) UpdateLastLogin(context context.Context, id string, at time.Time) error {
	result := repository.db.WithContext(context).
		Model(&userRecord{}).
		Where("id = ?", id).
		Update("lastlogin", at)

	if result.Error != nil {
		return fmt.Errorf("gorm_user_repo_update_last_login_failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

func (repository *GormUserRepository) first(context context.Context, condition string, argument any) (*identity.User, error) {
	var record userRecord
	if err := repository.db.WithContext(context).Where(condition, argument).First(&record).Error; err != nil {
		if dberr.IsNoRows(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}
	return record.toDomain(), nil
}
