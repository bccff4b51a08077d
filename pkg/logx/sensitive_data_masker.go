package logx

import (
	"regexp"
)

type SensitiveDataMaskerInterface interface {
	Mask(input []byte) []byte
}

//nolint:gochecknoglobals
var sensitiveDataPatterns = []*regexp.Regexp{
	// Affiliate API credentials travel as query/form parameters.
	regexp.MustCompile(`(?s)(app_key=)[^&\s"]+()`),
	regexp.MustCompile(`(?s)(sign=)[^&\s"]+()`),
	regexp.MustCompile(`(?s)(session=)[^&\s"]+()`),
	// Telegram bot tokens are embedded in the request path.
	regexp.MustCompile(`(/bot)\d+:[A-Za-z0-9_-]+(/)`),
	// JSON fields.
	regexp.MustCompile(`(?s)("app_secret":\s?").+?(")`),
	regexp.MustCompile(`(?s)("tracking_id":\s?").+?(")`),
	regexp.MustCompile("(?s)(Authorization: Bearer ).+?(\r)"),
}

type SensitiveDataMasker struct{}

func NewSensitiveDataMasker() SensitiveDataMasker {
	return SensitiveDataMasker{}
}

func (s SensitiveDataMasker) Mask(input []byte) []byte {
	for _, pattern := range sensitiveDataPatterns {
		input = pattern.ReplaceAll(input, []byte("${1}[MASKED]${2}"))
	}

	return input
}
