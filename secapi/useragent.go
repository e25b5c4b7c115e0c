package secapi

import "regexp"

// DefaultUserAgent is used when no user agent is configured.
const DefaultUserAgent = "Test Company contact@test.com"

// The SEC requires "<company name> <contact email>".
var userAgentPattern = regexp.MustCompile(`^(.+?)\s+([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})$`)

// UserAgent is a user agent accepted by the SEC fair access policy.
type UserAgent struct {
	value   string
	company string
	email   string
}

// NewUserAgent validates s.
func NewUserAgent(s string) (UserAgent, error) {
	match := userAgentPattern.FindStringSubmatch(s)
	if match == nil {
		return UserAgent{}, &UserAgentError{Reason: UserAgentReasonInvalidFormat, UserAgent: s}
	}

	return UserAgent{value: s, company: match[1], email: match[2]}, nil
}

// MustUserAgent is like NewUserAgent but panics on invalid input. Use it for
// hardcoded values only.
func MustUserAgent(s string) UserAgent {
	ua, err := NewUserAgent(s)
	if err != nil {
		panic(err)
	}

	return ua
}

// Company returns the company part.
func (u UserAgent) Company() string {
	return u.company
}

// Email returns the contact email.
func (u UserAgent) Email() string {
	return u.email
}

func (u UserAgent) String() string {
	return u.value
}
