// Package phases runs a single test case as four ordered phases: Given, Perform, Expect and
// Teardown.
//
// The general model is:
//
// 1. Given builds the preconditions for the test (constructed objects, opened servers, captured
// state) and returns them as a Record.
//
// 2. Perform, if present, receives a copy of that Record, does the thing being tested, and
// returns the outcome as another Record.
//
// 3. Expect receives the two Records merged together (keys from Perform win) and makes
// assertions. Assertions come from whatever library the caller likes; an assertion failure is
// either a returned error or a panic, as with testify's require package.
//
// 4. Teardown, if present, receives the same merged Record and cleans up. It runs whenever
// Given succeeded, no matter how Perform or Expect exited.
//
// This package does not find, schedule, or report tests. The phasetest subpackage connects it
// to the go test runner.
package phases
