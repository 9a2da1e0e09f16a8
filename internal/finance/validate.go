package finance

import (
	"fmt"
	"net/mail"
	"strings"
)

// Validate checks the fields required to create a user.
func (u NewUser) Validate() error {
	switch {
	case strings.TrimSpace(u.Username) == "":
		return fmt.Errorf("%w: username is required", ErrInvalid)
	case u.Password == "":
		return fmt.Errorf("%w: password is required", ErrInvalid)
	case strings.TrimSpace(u.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("%w: email %q is not a valid address", ErrInvalid, u.Email)
	}
	return nil
}

// Validate checks the fields required to create a transaction. An empty
// category is allowed; the caller is expected to fill it in.
func (t Transaction) Validate() error {
	switch {
	case t.UserID <= 0:
		return fmt.Errorf("%w: userId is required", ErrInvalid)
	case strings.TrimSpace(t.Merchant) == "":
		return fmt.Errorf("%w: merchant is required", ErrInvalid)
	case t.Amount.IsZero():
		return fmt.Errorf("%w: amount must be non-zero", ErrInvalid)
	}
	return nil
}

// Validate checks the fields required to create an account.
func (a Account) Validate() error {
	switch {
	case a.UserID <= 0:
		return fmt.Errorf("%w: userId is required", ErrInvalid)
	case strings.TrimSpace(a.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalid)
	case !a.Type.Valid():
		return fmt.Errorf("%w: unknown account type %q", ErrInvalid, a.Type)
	}
	return nil
}

// Validate checks the fields required to create a budget.
func (b Budget) Validate() error {
	switch {
	case b.UserID <= 0:
		return fmt.Errorf("%w: userId is required", ErrInvalid)
	case strings.TrimSpace(b.Category) == "":
		return fmt.Errorf("%w: category is required", ErrInvalid)
	case !b.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", ErrInvalid)
	case !b.Period.Valid():
		return fmt.Errorf("%w: unknown budget period %q", ErrInvalid, b.Period)
	case b.StartDate.IsZero():
		return fmt.Errorf("%w: startDate is required", ErrInvalid)
	}
	return nil
}

// Validate checks the fields required to create a goal.
func (g Goal) Validate() error {
	switch {
	case g.UserID <= 0:
		return fmt.Errorf("%w: userId is required", ErrInvalid)
	case strings.TrimSpace(g.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalid)
	case !g.TargetAmount.IsPositive():
		return fmt.Errorf("%w: targetAmount must be positive", ErrInvalid)
	}
	return nil
}
