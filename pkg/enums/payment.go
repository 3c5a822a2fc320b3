package enums

import "fmt"

// PaymentType maps to the payment_type enum in Postgres.
type PaymentType string

const (
	PaymentTypeActivationFee    PaymentType = "activation_fee"
	PaymentTypeMembershipSingle PaymentType = "membership_single"
	PaymentTypeMembershipDouble PaymentType = "membership_double"
	PaymentTypeShares           PaymentType = "shares"
	PaymentTypeOther            PaymentType = "other"
)

var validPaymentTypes = []PaymentType{
	PaymentTypeActivationFee,
	PaymentTypeMembershipSingle,
	PaymentTypeMembershipDouble,
	PaymentTypeShares,
	PaymentTypeOther,
}

// IsValid checks whether the given type matches the canonical enum.
func (p PaymentType) IsValid() bool {
	for _, candidate := range validPaymentTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentType converts raw strings into PaymentType.
func ParsePaymentType(value string) (PaymentType, error) {
	for _, candidate := range validPaymentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment type %q", value)
}

// PaymentMethod maps to the payment_method enum in Postgres.
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheck        PaymentMethod = "check"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodBankTransfer,
	PaymentMethodMobileMoney,
	PaymentMethodCash,
	PaymentMethodCheck,
}

// IsValid checks whether the given method matches the canonical enum.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw strings into PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
