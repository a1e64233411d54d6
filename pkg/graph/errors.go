package graph

import "fmt"

// MissingTargetError reports an address that does not resolve to a known
// target, either in a declared dependency list or as a query root.
type MissingTargetError struct {
	Address    string
	DeclaredBy string // Target whose dependency list named the address; empty for query roots
}

func (e *MissingTargetError) Error() string {
	if e.DeclaredBy != "" {
		return fmt.Sprintf("missing target %q declared as dependency of %q", e.Address, e.DeclaredBy)
	}
	return fmt.Sprintf("missing target %q", e.Address)
}

// DuplicateTargetError reports two target declarations sharing one address.
type DuplicateTargetError struct {
	Address string
}

func (e *DuplicateTargetError) Error() string {
	return fmt.Sprintf("duplicate target address %q", e.Address)
}
