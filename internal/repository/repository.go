package repository

import "errors"

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) inside this directory.
// Missing rows are reported as sql.ErrNoRows, as database/sql does.

// ErrDuplicate is returned when a write violates a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
