package entities

// InstallmentType classifies a payment's receivable by its ordinal position
// among the contract's receivables, ordered ascending by due date. Only the
// first and second installments of a contract affect commissions.
type InstallmentType string

const (
	InstallmentFirst  InstallmentType = "FIRST"
	InstallmentSecond InstallmentType = "SECOND"
	InstallmentOther  InstallmentType = "OTHER"
	InstallmentNone   InstallmentType = "NONE" // No receivable or no contract
)

// IsValid checks if the installment type is valid.
func (t InstallmentType) IsValid() bool {
	switch t {
	case InstallmentFirst, InstallmentSecond, InstallmentOther, InstallmentNone:
		return true
	default:
		return false
	}
}

// AffectsCommissions reports whether a payment on this installment can
// trigger commission verification.
func (t InstallmentType) AffectsCommissions() bool {
	return t == InstallmentFirst || t == InstallmentSecond
}
