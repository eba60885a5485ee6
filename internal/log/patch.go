// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

// Patch patches the existing settings with any option given.
// This is thread safe and propagates to all child loggers.
func (l *Logger) Patch(options ...Option) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.patchWithoutLocking(options...)
}

func (l *Logger) patchWithoutLocking(options ...Option) {
	var updatedSettings settings
	updatedSettings.mergeWith(l.settings)
	patch := newSettings(options)
	// context is set at construction only
	patch.context = nil
	updatedSettings.mergeWith(patch)
	l.settings = updatedSettings

	for _, child := range l.childs {
		child.patchWithoutLocking(options...)
	}
}

// PatchContext patches the logger and its descendants whose context
// contains the key and value given.
func (l *Logger) PatchContext(key, value string, options ...Option) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.patchContextWithoutLocking(key, value, options)
}

func (l *Logger) patchContextWithoutLocking(key, value string, options []Option) {
	if l.settings.hasContext(key, value) {
		l.patchWithoutLocking(options...)
		return
	}

	for _, child := range l.childs {
		child.patchContextWithoutLocking(key, value, options)
	}
}
