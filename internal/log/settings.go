// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"io"
	"os"
)

type settings struct {
	writer  io.Writer
	level   *Level
	format  *Format
	caller  callerSettings
	context []contextKeyValues
}

type contextKeyValues struct {
	key    string
	values []string
}

func newSettings(options []Option) (settings settings) {
	for _, option := range options {
		option(&settings)
	}
	return settings
}

// mergeWith sets values for each field not set in the
// settings from the other settings given.
func (s *settings) mergeWith(other settings) {
	if other.writer != nil {
		s.writer = other.writer
	}

	if other.level != nil {
		value := *other.level
		s.level = &value
	}

	if other.format != nil {
		value := *other.format
		s.format = &value
	}

	s.caller.mergeWith(other.caller)

	for _, otherKV := range other.context {
		found := false
		for i := range s.context {
			if s.context[i].key != otherKV.key {
				continue
			}
			found = true
			s.context[i].values = append(s.context[i].values, otherKV.values...)
			break
		}
		if !found {
			values := make([]string, len(otherKV.values))
			copy(values, otherKV.values)
			s.context = append(s.context, contextKeyValues{key: otherKV.key, values: values})
		}
	}
}

func (s *settings) setDefaults() {
	if s.writer == nil {
		s.writer = os.Stdout
	}

	if s.level == nil {
		value := Info
		s.level = &value
	}

	if s.format == nil {
		value := FormatConsole
		s.format = &value
	}

	s.caller.setDefaults()
}

func (s *settings) hasContext(key, value string) bool {
	for _, kv := range s.context {
		if kv.key != key {
			continue
		}
		for _, v := range kv.values {
			if v == value {
				return true
			}
		}
	}
	return false
}
