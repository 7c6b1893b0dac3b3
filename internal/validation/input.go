package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits.
const (
	MinUsernameLength       = 3
	MaxUsernameLength       = 30
	MinBountyTitleLength    = 3
	MaxBountyTitleLength    = 200
	MinBountyDescriptionLen = 10
	MaxBountyDescriptionLen = 10000
	MaxMilestoneDescription = 500
	MaxMilestonesPerEscrow  = 20
	MinAmount               = 0.0
	MaxAmount               = 100000000.0
	MaxDocumentTextLength   = 200000
	MaxSkillLength          = 50
	MaxSkillsCount          = 30
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// hederaAccountPattern matches shard.realm.num account identifiers.
var hederaAccountPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ValidateLength checks the rune length of a string field.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters", fieldName, max)
	}
	return nil
}

// ValidateEmail checks the email format.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateAmount checks a currency amount.
func ValidateAmount(fieldName string, amount float64) error {
	if amount <= MinAmount {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	if amount > MaxAmount {
		return fmt.Errorf("%s exceeds the maximum allowed value", fieldName)
	}
	return nil
}

// ValidateRole checks that the role is one of the platform roles.
func ValidateRole(role string) error {
	switch role {
	case "ngo", "lawyer", "donor":
		return nil
	}
	return fmt.Errorf("role must be one of: ngo, lawyer, donor")
}

// ValidateHederaAccount checks the shard.realm.num account format.
func ValidateHederaAccount(account string) error {
	if !hederaAccountPattern.MatchString(account) {
		return fmt.Errorf("invalid ledger account identifier")
	}
	return nil
}
