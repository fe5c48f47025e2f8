package common

import (
	"errors"
	"fmt"
)

// ErrMissingSetting is matched by every MissingSettingError.
var ErrMissingSetting = errors.New("missing setting")

// MissingSettingError reports a required setting that was not configured.
// It is fatal for the call and is never retried.
type MissingSettingError struct {
	Setting string
}

func MissingSetting(setting string) *MissingSettingError {
	return &MissingSettingError{Setting: setting}
}

func (e *MissingSettingError) Error() string {
	return fmt.Sprintf("%s not detected, add it to the environment or the .env file", e.Setting)
}

func (e *MissingSettingError) Is(target error) bool {
	return target == ErrMissingSetting
}

// IsMissingSetting returns the missing setting name when err carries a
// MissingSettingError.
func IsMissingSetting(err error) (string, bool) {
	var mse *MissingSettingError
	if errors.As(err, &mse) {
		return mse.Setting, true
	}
	return "", false
}
