// Package analyzer implements the commit-analyzer stage.
//
// The stage parses every commit made since the last release with the
// Angular convention and classifies it as a major, minor or patch change.
// Under the angular preset only a "BREAKING CHANGE:" footer marks a
// breaking commit; the conventionalcommits preset also honours "type!:"
// headers and "BREAKING-CHANGE:" footers.
// The most significant classification across all commits decides the
// next release type and version.
//
// # Release Rules
//
// Custom rules are evaluated before the preset's defaults. A rule matches
// when every field it sets matches the commit; type and scope accept glob
// patterns. When any custom rule matches a commit, the highest matching
// level is used and the defaults are not consulted for that commit:
//
//	releaseRules:
//	  - breaking: true
//	    release: minor
//	  - type: docs
//	    scope: README
//	    release: patch
//
// A release value of false (or "none") suppresses a release for commits
// matching the rule.
package analyzer
