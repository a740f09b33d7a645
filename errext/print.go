package errext

import "github.com/sirupsen/logrus"

// Fprint logs err at error level through logger, attaching any fields
// Format(err) extracts (currently just "hint"). A nil err is a no-op.
func Fprint(logger logrus.FieldLogger, err error) {
	if err == nil {
		return
	}

	errorText, fields := Format(err)
	logger.WithFields(logrus.Fields(fields)).Error(errorText)
}
