// Copyright (c) 2022 Runetale Inc & AUTHORS All rights reserved.
// Use of this source code is governed by a BSD 3-Clause License
// license that can be found in the LICENSE file.

// Package document loads YAML and JSON documents into plain Go trees
// (map[string]any, []any and scalars) that read-only views can sit on.
package document

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrEmpty = errors.New("empty document")

// Load reads the first document in path. JSON is accepted as YAML.
func Load(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return doc, nil
}

func Decode(r io.Reader) (any, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	return doc, nil
}

// SplitPath splits a dotted path such as "items.0.name" into keys.
// Empty input is the root; empty segments are kept as "" keys.
func SplitPath(path string) []any {
	if path == "" || path == "." {
		return nil
	}
	parts := strings.Split(path, ".")
	keys := make([]any, len(parts))
	for i, p := range parts {
		keys[i] = p
	}
	return keys
}
