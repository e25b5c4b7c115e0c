package extract

import "github.com/amp-labs/secflow/secapi"

// Settings controls how the extract states reach the SEC. They travel unchanged in
// the context of every stage.
type Settings struct {
	// UserAgent is sent with every request. Empty means secapi.DefaultUserAgent.
	UserAgent string
	// BaseURL replaces secapi.DefaultBaseURL when set.
	BaseURL string
	// ClientOptions are passed to secapi.NewClient.
	ClientOptions []secapi.ClientOption
	// Executor replaces the prepared client when executing the request.
	Executor secapi.Executor
}

func (s Settings) userAgent() string {
	if s.UserAgent == "" {
		return secapi.DefaultUserAgent
	}

	return s.UserAgent
}

func (s Settings) requestOptions() []secapi.RequestOption {
	if s.BaseURL == "" {
		return nil
	}

	return []secapi.RequestOption{secapi.WithBaseURL(s.BaseURL)}
}
