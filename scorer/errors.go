// SPDX-License-Identifier: MIT

package scorer

import "errors"

var (
	// ErrStatus indicates a non-200 response from a remote model.
	ErrStatus = errors.New("scorer: unexpected HTTP status")

	// ErrBadResponse indicates a response body that is not a logits tensor.
	ErrBadResponse = errors.New("scorer: malformed response")

	// ErrOptionViolation indicates an invalid option or constructor argument.
	ErrOptionViolation = errors.New("scorer: option violation")
)
