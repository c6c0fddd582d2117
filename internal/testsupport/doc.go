// Package testsupport provides shared helpers for package tests: temp-dir
// configurations and queue store fixtures.
package testsupport
