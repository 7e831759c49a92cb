// Package util has small string helpers shared across packages.
package util
