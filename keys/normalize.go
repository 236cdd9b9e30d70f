package keys

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrKeyFormat is returned when the input does not start with a recognized PEM marker.
var ErrKeyFormat = errors.New("unsupported key format")

// Kind identifies which PEM block shape a key uses.
type Kind int

const (
	// KindPublic is a "PUBLIC KEY" block.
	KindPublic Kind = iota + 1
	// KindRSAPrivate is an "RSA PRIVATE KEY" block.
	KindRSAPrivate
)

func (k Kind) String() string {
	switch k {
	case KindPublic:
		return "PUBLIC KEY"
	case KindRSAPrivate:
		return "RSA PRIVATE KEY"
	default:
		return "unknown"
	}
}

func (k Kind) begin() string { return "-----BEGIN " + k.String() + "-----" }
func (k Kind) end() string   { return "-----END " + k.String() + "-----" }

var (
	lineBreaks   = regexp.MustCompile(`\s+|\\n`)
	repeatedNewl = regexp.MustCompile(`\n{2,}`)
)

// Detect reports the block shape of raw by its leading marker.
func Detect(raw string) (Kind, error) {
	trimmed := strings.TrimSpace(raw)
	for _, k := range []Kind{KindPublic, KindRSAPrivate} {
		if strings.HasPrefix(trimmed, k.begin()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: missing PUBLIC KEY or RSA PRIVATE KEY header", ErrKeyFormat)
}

// Normalize returns raw as a canonical PEM block.
//
// The body keeps one base64 line per input line; whitespace runs and literal
// "\n" escapes both count as line separators. The result has no trailing newline.
func Normalize(raw string) (string, error) {
	kind, err := Detect(raw)
	if err != nil {
		return "", err
	}

	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, kind.begin())
	idx := strings.LastIndex(body, kind.end())
	if idx < 0 {
		return "", fmt.Errorf("%w: missing %s footer", ErrKeyFormat, kind)
	}
	if rest := strings.ReplaceAll(body[idx+len(kind.end()):], `\n`, ""); strings.TrimSpace(rest) != "" {
		return "", fmt.Errorf("%w: trailing data after %s footer", ErrKeyFormat, kind)
	}
	body = body[:idx]

	body = lineBreaks.ReplaceAllString(body, "\n")
	body = repeatedNewl.ReplaceAllString(body, "\n")
	body = strings.TrimSpace(body)
	if body == "" {
		return "", fmt.Errorf("%w: empty %s body", ErrKeyFormat, kind)
	}

	return kind.begin() + "\n" + body + "\n" + kind.end(), nil
}
