package message

import "fmt"

// ErrorCode classifies a server-reported Error message using the same
// numbering as HTTP status codes, since the failure modes line up
// one-to-one with their HTTP counterparts.
type ErrorCode int

const (
	BadRequest          ErrorCode = 400
	NotFound            ErrorCode = 404
	UpgradeRequired     ErrorCode = 426
	InternalServerError ErrorCode = 500
)

func (c ErrorCode) String() string {
	switch c {
	case BadRequest:
		return "BadRequest"
	case NotFound:
		return "NotFound"
	case UpgradeRequired:
		return "UpgradeRequired"
	case InternalServerError:
		return "InternalServerError"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}
