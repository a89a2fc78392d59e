package policy

import "errors"

var ErrPolicyNotFound = errors.New("work hour policy not found")
