//go:build tools

// Package tools pins the mockgen version used by `go generate ./contract`
// so regenerating mocks/mock_contract.go on a fresh checkout uses the
// same gomock release as the tests.
package socket_deva

import (
	_ "go.uber.org/mock/mockgen"
)
