package domain

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrBundleNotFound  = errors.New("bundle not found")
	ErrTestNotFound    = errors.New("ab test not found")
)
