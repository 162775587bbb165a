package server

import "errors"

var (
	// ErrUnknownKind is returned when starting a flow of an unregistered kind.
	ErrUnknownKind = errors.New("server: unknown flow kind")
	// ErrFlowNotFound is returned for ids that are not live.
	ErrFlowNotFound = errors.New("server: flow not found")
	// ErrFieldNotInFlow is returned when a patch names a field the flow does not collect.
	ErrFieldNotInFlow = errors.New("server: field does not belong to this flow")
	// ErrUnknownOption is returned for style or category ids missing from the catalog.
	ErrUnknownOption = errors.New("server: unknown option")
)
