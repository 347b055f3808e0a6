package resolver

import (
	"fmt"

	"github.com/wardle/pura-go/compound"
)

// QuorumError is raised in strict mode when fewer than k services
// produced a usable candidate, or no size-k subset of their answers
// intersected. It names the input and the collected per-service candidate
// lists so a caller can see exactly why agreement failed.
type QuorumError struct {
	Input     compound.Identifier
	Quorum    int
	Collected [][]compound.Identifier
}

func (e *QuorumError) Error() string {
	return fmt.Sprintf("resolver: quorum of %d not reached for %s (collected %d service response(s))",
		e.Quorum, e.Input, len(e.Collected))
}
