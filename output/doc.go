// Package output pushes pipeline progress to connected clients.
package output
