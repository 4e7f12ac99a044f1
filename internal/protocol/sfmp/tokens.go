package sfmp

// Wire limits.
const (
	// MaxLineLength bounds a command or handshake line, terminator excluded.
	MaxLineLength = 1024

	// MaxFrameSize bounds a single payload frame.
	MaxFrameSize = 1 << 20

	// DefaultChunkSize is the default number of bytes read per frame.
	DefaultChunkSize = 4096
)

// Handshake tokens.
const (
	TokenValid   = "VALID"
	TokenInvalid = "INVALID"
)

// Payload markers. MarkerEmpty is the empty-file sentinel: a single NUL
// byte meaning the payload has zero bytes.
const (
	MarkerEmpty  byte = 0x00
	MarkerFramed byte = 0x01
)

// Verdict is the result of the validation handshake.
type Verdict bool

const (
	Valid   Verdict = true
	Invalid Verdict = false
)

// Token returns the wire token for v.
func (v Verdict) Token() string {
	if v {
		return TokenValid
	}
	return TokenInvalid
}

// String implements fmt.Stringer.
func (v Verdict) String() string {
	return v.Token()
}

// ParseVerdict decodes a handshake token.
func ParseVerdict(token string) (Verdict, error) {
	switch token {
	case TokenValid:
		return Valid, nil
	case TokenInvalid:
		return Invalid, nil
	default:
		return Invalid, ErrUnexpectedToken
	}
}
