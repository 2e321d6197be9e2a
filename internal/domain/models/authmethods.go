// internal/domain/models/authmethods.go
package models

// Auth methods recorded on User.AuthMethod. The service does not
// authenticate; the value records how the external identity was resolved.
const (
	AuthPassword = "password"
	AuthWallet   = "wallet"
	AuthGoogle   = "google"
)

// AllAuthMethods lists every accepted AuthMethod value.
var AllAuthMethods = []string{AuthPassword, AuthWallet, AuthGoogle}

// IsValidAuthMethod reports whether value is a known auth method.
func IsValidAuthMethod(value string) bool {
	for _, m := range AllAuthMethods {
		if m == value {
			return true
		}
	}
	return false
}
