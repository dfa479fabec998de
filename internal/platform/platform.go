// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package platform maps the host operating system to the native build policy
// used for the whole run.
package platform

import (
	"fmt"
	"runtime"
)

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	IOS     = "ios"
	Linux   = "linux"
)

// DefaultLibrary is the base name of the native library produced by make.sh.
const DefaultLibrary = "libcapstone"

// Family is the closed set of platform families the build policy knows about.
type Family int

const (
	// Unix is the default family; any tag not listed in profiles lands here.
	Unix Family = iota
	Apple
	WindowsLike
)

func (f Family) String() string {
	switch f {
	case Apple:
		return "apple-like"
	case WindowsLike:
		return "windows-like"
	default:
		return "other-unix-like"
	}
}

// Profile is the resolved build policy for one run.
// It must not be modified after Resolve returns it.
type Profile struct {
	// Tag is the platform identifier the profile was resolved from.
	Tag    string
	Family Family
	// InvokeBuild reports whether the native build script is run at all.
	InvokeBuild bool
	// Artifact is the file name expected at the workspace root after the
	// build, empty if no artifact is expected.
	Artifact string
}

// ExpectsArtifact reports whether a missing artifact is a failure.
func (p Profile) ExpectsArtifact() bool {
	return p.Artifact != ""
}

func (p Profile) String() string {
	artifact := p.Artifact
	if artifact == "" {
		artifact = "<none>"
	}
	return fmt.Sprintf("%s (%s) invoke=%t artifact=%s", p.Tag, p.Family, p.InvokeBuild, artifact)
}

type policy struct {
	invoke bool
	ext    string // artifact extension, empty when no artifact is expected
}

var policies = map[Family]policy{
	WindowsLike: {invoke: false, ext: ""},
	Apple:       {invoke: true, ext: ".dylib"},
	Unix:        {invoke: true, ext: ".so"},
}

var families = map[string]Family{
	Windows: WindowsLike,
	Darwin:  Apple,
	IOS:     Apple,
}

// FamilyOf returns the platform family of tag. Unknown tags are Unix.
func FamilyOf(tag string) Family {
	if f, ok := families[tag]; ok {
		return f
	}
	return Unix
}

// Resolve returns the profile for tag using DefaultLibrary.
func Resolve(tag string) Profile {
	return ResolveLibrary(tag, DefaultLibrary)
}

// ResolveLibrary returns the profile for tag, naming the expected artifact
// after lib.
func ResolveLibrary(tag, lib string) Profile {
	family := FamilyOf(tag)
	pol := policies[family]
	p := Profile{
		Tag:         tag,
		Family:      family,
		InvokeBuild: pol.invoke,
	}
	if pol.ext != "" {
		p.Artifact = lib + pol.ext
	}
	return p
}

// Host resolves the profile of the running operating system.
func Host() Profile {
	return Resolve(runtime.GOOS)
}
