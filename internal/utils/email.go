package utils

import "regexp"

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsValidEmail does a shallow syntactic check; deliverability is proven
// by the verification mail, not here.
func IsValidEmail(email string) bool {
	return len(email) <= 255 && emailPattern.MatchString(email)
}
