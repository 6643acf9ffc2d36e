// Package testsupport holds helpers shared by package tests: isolated configs
// rooted in t.TempDir and a throwaway SQLite content store.
package testsupport
