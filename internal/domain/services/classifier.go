// Package services holds stateless domain services: logic that spans several
// entities and belongs to no single one of them.
package services

import (
	"sort"

	"github.com/dcastillo/commispipe/internal/domain/entities"
	"github.com/google/uuid"
)

// InstallmentClassifier decides which installment of a contract a payment
// lands on. The ordinal is positional: receivables are ordered by due date,
// and ties keep their stored relative order. The classification is computed
// at payment time and frozen into the event; later changes to the contract's
// receivables never re-classify an already emitted event.
type InstallmentClassifier struct{}

func NewInstallmentClassifier() *InstallmentClassifier {
	return &InstallmentClassifier{}
}

// Classify returns the installment type of the receivable with the given ID
// among the contract's receivables. A receivable outside the set (or a nil
// set, as for contract-less payments) classifies as NONE.
func (c *InstallmentClassifier) Classify(receivableID uuid.UUID, contractReceivables []*entities.Receivable) entities.InstallmentType {
	if len(contractReceivables) == 0 {
		return entities.InstallmentNone
	}

	ordered := make([]*entities.Receivable, len(contractReceivables))
	copy(ordered, contractReceivables)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DueDate().Before(ordered[j].DueDate())
	})

	for i, r := range ordered {
		if r.ID() == receivableID {
			switch i {
			case 0:
				return entities.InstallmentFirst
			case 1:
				return entities.InstallmentSecond
			default:
				return entities.InstallmentOther
			}
		}
	}
	return entities.InstallmentNone
}
