package validation

import (
	"fmt"

	"github.com/rgb-wg/rgb-core-go/operation"
)

func newFinding(sev Severity, code Code, op operation.OpId, format string, args ...any) Finding {
	return Finding{Severity: sev, Code: code, Message: fmt.Sprintf(format, args...), Op: op}
}
