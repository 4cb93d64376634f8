// internal/status/code.go
package status

import (
	"errors"

	"github.com/tamzrod/ec-probe/internal/ec"
	"github.com/tamzrod/ec-probe/internal/report"
)

// Error codes published in SlotLastErrorCode. 0 means no error and 1 is
// an error of unknown kind.
const (
	CodeNone uint16 = iota
	CodeGeneric
	CodeInvalidAddress
	CodeNoWorkingController
	CodeAccessDenied
	CodeNotPresent
	CodeTimeout
	CodeRegisterRead
	CodeRegisterWrite
	CodeReportSink
)

// ErrorCode maps an error to its status code. More specific kinds are
// checked first: a read that timed out reports CodeTimeout.
func ErrorCode(err error) uint16 {
	if err == nil {
		return CodeNone
	}

	ordered := []struct {
		target error
		code   uint16
	}{
		{ec.ErrInvalidAddress, CodeInvalidAddress},
		{ec.ErrNoWorkingController, CodeNoWorkingController},
		{ec.ErrAccessDenied, CodeAccessDenied},
		{ec.ErrNotPresent, CodeNotPresent},
		{ec.ErrTimeout, CodeTimeout},
		{ec.ErrRegisterRead, CodeRegisterRead},
		{ec.ErrRegisterWrite, CodeRegisterWrite},
		{report.ErrSinkUnavailable, CodeReportSink},
	}
	for _, o := range ordered {
		if errors.Is(err, o.target) {
			return o.code
		}
	}
	return CodeGeneric
}
