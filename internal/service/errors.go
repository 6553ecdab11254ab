package service

import "errors"

var (
	ErrRowNotFound            = errors.New("basket row not found")
	ErrUnknownDuplicatePolicy = errors.New("unknown duplicate policy")
)
