package models

import "fmt"

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Validate checks the shape of a create/update payload before it leaves the
// console. Pricing itself is the backend's business.
func (s *OrderSubmission) Validate() error {
	if len(s.Items) == 0 {
		return ValidationError{Field: "items", Message: "at least one item is required"}
	}

	for i, item := range s.Items {
		if err := validateSubmissionItem(item, i); err != nil {
			return err
		}
	}

	if s.TotalAmount.IsNegative() {
		return ValidationError{Field: "totalAmount", Message: "must not be negative"}
	}

	orderType, err := ParseOrderType(string(s.Type))
	if err != nil {
		return ValidationError{Field: "type", Message: "must be one of DINE_IN, TAKE_AWAY, DELIVERY"}
	}

	dineIn := orderType == OrderTypeDineIn
	if dineIn && s.TableInfo == nil {
		return ValidationError{Field: "tableInfo", Message: "required for dine-in orders"}
	}
	if !dineIn && s.TableInfo != nil {
		return ValidationError{Field: "tableInfo", Message: "only dine-in orders take a table"}
	}

	if s.PaymentMethod != nil {
		if _, err := ParsePaymentMode(string(*s.PaymentMethod)); err != nil {
			return ValidationError{Field: "paymentMethod", Message: "must be one of CASH, CARD, UPI, ONLINE"}
		}
	}
	return nil
}

func validateSubmissionItem(item SubmissionItem, index int) error {
	prefix := fmt.Sprintf("items[%d]", index)

	if item.ID == 0 {
		return ValidationError{Field: prefix + ".id", Message: "is required"}
	}
	if item.Quantity < 1 {
		return ValidationError{Field: prefix + ".quantity", Message: "must be at least 1"}
	}
	if item.Price.IsNegative() {
		return ValidationError{Field: prefix + ".price", Message: "must not be negative"}
	}
	return nil
}
