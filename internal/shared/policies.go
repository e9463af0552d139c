package shared

// ConfirmationPolicy specifies how services handle operator confirmations.
type ConfirmationPolicy int

const (
	// ConfirmationPrompt indicates the service should ask the operator.
	ConfirmationPrompt ConfirmationPolicy = iota
	// ConfirmationAssumeYes indicates the service should continue without asking.
	ConfirmationAssumeYes
)

// ConfirmationPolicyFromBool converts the --yes flag into a policy.
func ConfirmationPolicyFromBool(assumeYes bool) ConfirmationPolicy {
	if assumeYes {
		return ConfirmationAssumeYes
	}
	return ConfirmationPrompt
}

// ShouldPrompt reports whether the service must ask the operator.
func (policy ConfirmationPolicy) ShouldPrompt() bool {
	return policy != ConfirmationAssumeYes
}
