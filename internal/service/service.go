package service

import (
	"database/sql"
	"errors"
	"fmt"

	"shopapi/internal/repository"
)

// Sentinel errors shared by all services. Handlers map them onto HTTP statuses.
var (
	ErrIDRequired         = errors.New("id is required")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("you do not own this resource")
	ErrConflict           = errors.New("already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrReaderNil          = errors.New("reader is nil")
	ErrTooManyPhotos      = errors.New("photo limit reached for this product")
	ErrUnsupportedMedia   = errors.New("only JPEG, PNG and WebP images are accepted")
	ErrFileTooLarge       = errors.New("file is too large")
)

var (
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrDeliveryNotFound = fmt.Errorf("delivery info %w", ErrNotFound)
	ErrShopNotFound     = fmt.Errorf("shop %w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrPhotoNotFound    = fmt.Errorf("photo %w", ErrNotFound)

	ErrEmailTaken    = fmt.Errorf("email %w", ErrConflict)
	ErrPhoneTaken    = fmt.Errorf("phone %w", ErrConflict)
	ErrShopNameTaken = fmt.Errorf("shop name %w", ErrConflict)
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// normalizePage clamps limit into [1, maxPageLimit] and offset to >= 0.
func normalizePage(limit, offset int) repository.PageQuery {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset}
}

// notFound replaces sql.ErrNoRows with target and passes other errors through.
func notFound(err, target error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return target
	}
	return err
}

// conflict replaces repository.ErrDuplicate with target.
func conflict(err, target error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return target
	}
	return err
}

// ListResult is a page of items with the total number of matches.
type ListResult[T any] struct {
	Items []T `json:"data"`
	Total int `json:"total"`
}
