package service

import "errors"

var (
	// ErrDuplicateOrden reports an import collision on orden_interna. The
	// insert is a silent no-op; callers count and continue.
	ErrDuplicateOrden = errors.New("orden already exists")

	// ErrMissingIdentifier means a write was attempted without idAviso or
	// ordenInterna/ordenTrabajo.
	ErrMissingIdentifier = errors.New("missing idAviso or ordenInterna")

	// ErrAvisoNotFound means the targeted orden does not exist; no partial
	// effect took place.
	ErrAvisoNotFound = errors.New("aviso not found")
)
