package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrCloudRequired      = errors.New("sign in to use cloud photo storage")
	ErrUnsupportedImage   = errors.New("unsupported image type, use png, jpg, jpeg or webp")
	ErrStorageUnavailable = errors.New("photo storage is not configured")
)
