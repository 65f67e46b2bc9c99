package checkpoint

import (
	"errors"
	"fmt"

	"github.com/kubev2v/virt-harness/internal/models"
	srvErrors "github.com/kubev2v/virt-harness/pkg/errors"
)

// ErrSkip marks a checkpoint that cannot run in this environment.
var ErrSkip = errors.New("skipped")

func Skip(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSkip, fmt.Sprintf(format, args...))
}

// Classify maps the error returned by a checkpoint to its verdict. Assertion
// errors are failures of the tool under test; everything else means the
// fixture broke.
func Classify(err error) models.Verdict {
	switch {
	case err == nil:
		return models.VerdictPass
	case errors.Is(err, ErrSkip):
		return models.VerdictSkip
	case srvErrors.IsTestFailure(err):
		return models.VerdictFail
	default:
		return models.VerdictError
	}
}
