//go:build tools

// Package tools tracks code generators used through go generate, so that
// mockgen resolves from go.mod on a fresh checkout.
package voiceroom

import (
	_ "go.uber.org/mock/mockgen"
)
