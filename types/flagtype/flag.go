// Copyright (c) 2022 Runetale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD 3-Clause License
// license that can be found in the LICENSE file.

package flagtype

import (
	"errors"
	"flag"

	"github.com/runetale/roview/types/readonly"
)

type policyValue struct{ p *readonly.Policy }

const DefaultPolicy = readonly.RejectWithError

// PolicyValue returns a flag.Value that parses a view policy into dst.
func PolicyValue(dst *readonly.Policy, defaultPolicy readonly.Policy) flag.Value {
	*dst = defaultPolicy
	return policyValue{dst}
}

func (v policyValue) String() string {
	if v.p == nil {
		return ""
	}
	return v.p.String()
}

func (v policyValue) Set(s string) error {
	if s == "" {
		return errors.New("can't be the empty string")
	}
	p, err := readonly.ParsePolicy(s)
	if err != nil {
		return err
	}
	*v.p = p
	return nil
}
