package user

import "errors"

var (
	ErrUnknownRole           = errors.New("unknown role")
	ErrPermissionRequired    = errors.New("insufficient permissions")
	ErrSelfServiceNotAllowed = errors.New("this role cannot perform attendance self-service")
)
