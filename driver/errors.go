package driver

import "errors"

// ErrStopTimeout indicates the loop did not exit within the stop timeout.
var ErrStopTimeout = errors.New("stop timed out waiting for driver loop")
