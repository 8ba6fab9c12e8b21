// Package util holds small generic helpers shared by locallm packages.
package util
