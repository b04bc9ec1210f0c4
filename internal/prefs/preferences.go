package prefs

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ErrUnknownFlag is returned when a patch names a flag that does not exist.
var ErrUnknownFlag = errors.New("unknown accessibility flag")

// Flag names one user accessibility toggle.
type Flag string

const (
	LargeText         Flag = "largeText"
	BoldText          Flag = "boldText"
	HighContrast      Flag = "highContrast"
	ReduceMotion      Flag = "reduceMotion"
	Grayscale         Flag = "grayscale"
	InvertColors      Flag = "invertColors"
	ScreenReaderHints Flag = "screenReaderHints"
)

var allFlags = []Flag{
	LargeText,
	BoldText,
	HighContrast,
	ReduceMotion,
	Grayscale,
	InvertColors,
	ScreenReaderHints,
}

// AllFlags returns every flag in display order.
func AllFlags() []Flag {
	return append([]Flag(nil), allFlags...)
}

// ParseFlag matches a flag name case-insensitively.
func ParseFlag(s string) (Flag, error) {
	s = strings.TrimSpace(s)
	for _, f := range allFlags {
		if strings.EqualFold(string(f), s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFlag, s)
}

// Preferences is the stored set of user accessibility toggles.
// The zero value is the all-off set.
type Preferences struct {
	LargeText         bool `json:"largeText"`
	BoldText          bool `json:"boldText"`
	HighContrast      bool `json:"highContrast"`
	ReduceMotion      bool `json:"reduceMotion"`
	Grayscale         bool `json:"grayscale"`
	InvertColors      bool `json:"invertColors"`
	ScreenReaderHints bool `json:"screenReaderHints"`
}

func (p Preferences) Get(f Flag) bool {
	switch f {
	case LargeText:
		return p.LargeText
	case BoldText:
		return p.BoldText
	case HighContrast:
		return p.HighContrast
	case ReduceMotion:
		return p.ReduceMotion
	case Grayscale:
		return p.Grayscale
	case InvertColors:
		return p.InvertColors
	case ScreenReaderHints:
		return p.ScreenReaderHints
	}
	return false
}

// With returns a copy of p with f set to v. Unknown flags leave p unchanged.
func (p Preferences) With(f Flag, v bool) Preferences {
	switch f {
	case LargeText:
		p.LargeText = v
	case BoldText:
		p.BoldText = v
	case HighContrast:
		p.HighContrast = v
	case ReduceMotion:
		p.ReduceMotion = v
	case Grayscale:
		p.Grayscale = v
	case InvertColors:
		p.InvertColors = v
	case ScreenReaderHints:
		p.ScreenReaderHints = v
	}
	return p
}

// Map flattens p into flag -> value.
func (p Preferences) Map() map[Flag]bool {
	out := make(map[Flag]bool, len(allFlags))
	for _, f := range allFlags {
		out[f] = p.Get(f)
	}
	return out
}

// Patch is a partial update. Flags absent from the map are left untouched.
type Patch map[Flag]bool

// Validate reports the first unknown flag in the patch.
func (p Patch) Validate() error {
	keys := make([]string, 0, len(p))
	for f := range p {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !slices.Contains(allFlags, Flag(k)) {
			return fmt.Errorf("%w: %q", ErrUnknownFlag, k)
		}
	}
	return nil
}

// Apply merges patch into p. Call Validate first; unknown flags are ignored here.
func (p Preferences) Apply(patch Patch) Preferences {
	for f, v := range patch {
		p = p.With(f, v)
	}
	return p
}

// PatchOf returns a patch that sets every flag to p's value.
func PatchOf(p Preferences) Patch {
	return Patch(p.Map())
}
