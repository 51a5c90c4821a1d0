// Copyright (c) 2022 Runetale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD 3-Clause License
// license that can be found in the LICENSE file.

package readonly

import "fmt"

// Policy selects what a view reports when a caller tries to mutate it.
// The target is never modified under either policy.
type Policy uint8

const (
	// RejectWithError reports every write and delete as failed.
	RejectWithError Policy = iota
	// RejectSilently reports every write and delete as successful.
	RejectSilently
)

const (
	RejectWithErrorStr string = "reject-with-error"
	RejectSilentlyStr  string = "reject-silently"
)

func (p Policy) String() string {
	switch p {
	case RejectWithError:
		return RejectWithErrorStr
	case RejectSilently:
		return RejectSilentlyStr
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

func (p Policy) valid() bool {
	return p == RejectWithError || p == RejectSilently
}

// report is the boolean outcome of any mutation attempt.
func (p Policy) report() bool {
	return p == RejectSilently
}

// ParsePolicy accepts the policy names as printed by String, plus the
// short forms "error" and "silent".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case RejectWithErrorStr, "error":
		return RejectWithError, nil
	case RejectSilentlyStr, "silent":
		return RejectSilently, nil
	default:
		return 0, fmt.Errorf("unknown policy %q", s)
	}
}
