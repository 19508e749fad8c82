package domain

import (
	"path"
	"path/filepath"
	"strings"
)

// Normalize converts a step name into its path segment.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// Join returns the path of a child called name under parent.
func Join(parent, name string) string {
	return path.Join(parent, Normalize(name))
}

// RootPath places a root step called name under workdir.
func RootPath(workdir, name string) string {
	return Join(filepath.ToSlash(workdir), name)
}

// FixPaths rewrites every descendant path from its parent's path. The root
// path is left as given. Paths are not maintained on rename, so this must be
// run again after the tree is assembled or changed.
func FixPaths(root *Node) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		parent := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !parent.IsWorkflow() {
			continue
		}
		for _, child := range parent.Children {
			child.Path = Join(parent.Path, child.Name)
			stack = append(stack, child)
		}
	}
}
