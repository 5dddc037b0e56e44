package validate

import "github.com/go-playground/validator/v10"

var v = validator.New()

// Email reports whether addr is a syntactically valid email address.
// Every call site that hands an address to the mailer checks through here so
// the submission path and the scheduler agree on what "valid" means.
func Email(addr string) bool {
	return v.Var(addr, "required,email") == nil
}
